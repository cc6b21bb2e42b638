package repository

import (
	"context"

	"github.com/jafarshop/gradeoverlay/internal/domain"
)

// MappingRepository defines mapping store data access methods
type MappingRepository interface {
	SelectByCollection(ctx context.Context, collectionHandle string) ([]*domain.MappingRow, error)
	SelectByCollectionAndProduct(ctx context.Context, collectionHandle, productHandle string) ([]*domain.MappingRow, error)
	FindByHandleCaseInsensitive(ctx context.Context, handle string) ([]*domain.MappingRow, error)
	// UpdateGradeAndSizeByHandle rewrites grade and size on every row of the handle and returns rows affected
	UpdateGradeAndSizeByHandle(ctx context.Context, handle string, grade *string, size domain.SizeSet) (int64, error)
	// UpsertRows inserts or overwrites rows keyed by (product_id, collection_id) and returns rows written
	UpsertRows(ctx context.Context, rows []*domain.MappingRow) (int, error)
	DeleteRow(ctx context.Context, productID, collectionID string) error
	ListByProduct(ctx context.Context, productID string) ([]*domain.MappingRow, error)
	DeleteByProduct(ctx context.Context, productID string) (int64, error)
	// DeleteByProductExcept removes the product's rows whose collection is not in keep
	DeleteByProductExcept(ctx context.Context, productID string, keep []string) (int64, error)
}

// SourceRepository reads the bulk grade source table
type SourceRepository interface {
	Page(ctx context.Context, offset, limit int) (*domain.SourcePage, error)
}

// CheckpointStore persists the position of a sync run between invocations
type CheckpointStore interface {
	// Load returns nil, nil when no run has been checkpointed
	Load(ctx context.Context) (*domain.Checkpoint, error)
	Save(ctx context.Context, cp *domain.Checkpoint) error
	Reset(ctx context.Context) error
}

// ResponseCache holds rendered storefront responses for a short time
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Mapping     MappingRepository
	Source      SourceRepository
	Checkpoints CheckpointStore
	// Cache is nil when no cache backend is configured
	Cache ResponseCache
}
