package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/pkg/errors"
)

const sourceStore = "source table"

type sourceRepository struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewSourceRepository creates a reader for the bulk grade source table
func NewSourceRepository(db *sql.DB, table string, logger *zap.Logger) *sourceRepository {
	if table == "" {
		table = "grade_source_rows"
	}
	return &sourceRepository{db: db, table: pq.QuoteIdentifier(table), logger: logger}
}

// Page reads rows [offset, offset+limit) in insertion order together with the exact row count
func (r *sourceRepository) Page(ctx context.Context, offset, limit int) (*domain.SourcePage, error) {
	query := fmt.Sprintf(`
		SELECT handle, COALESCE(grade, '')
		FROM %s
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, r.table)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to read source page", zap.Error(err), zap.Int("offset", offset), zap.Int("limit", limit))
		return nil, &errors.ErrUpstream{Store: sourceStore, Err: err}
	}
	defer rows.Close()

	page := &domain.SourcePage{Rows: []domain.SourceRow{}}
	for rows.Next() {
		var row domain.SourceRow
		if err := rows.Scan(&row.Handle, &row.Grade); err != nil {
			return nil, &errors.ErrUpstream{Store: sourceStore, Err: err}
		}
		page.Rows = append(page.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.ErrUpstream{Store: sourceStore, Err: err}
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, r.table)).Scan(&total); err != nil {
		r.logger.Error("Failed to count source rows", zap.Error(err))
		return nil, &errors.ErrUpstream{Store: sourceStore, Err: err}
	}
	page.Total = &total

	return page, nil
}
