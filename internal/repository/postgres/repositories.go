package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/config"
	"github.com/jafarshop/gradeoverlay/internal/repository"
)

// NewRepositories creates the Postgres-backed repositories. Checkpoints default to process memory;
// callers with Redis replace Checkpoints and Cache afterwards.
func NewRepositories(db *sql.DB, cfg config.DatabaseConfig, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Mapping:     NewMappingRepository(db, cfg.MappingTable, logger),
		Source:      NewSourceRepository(db, cfg.SourceTable, logger),
		Checkpoints: repository.NewMemoryCheckpointStore(),
	}
}
