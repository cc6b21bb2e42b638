package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/pkg/errors"
)

const mappingStore = "mapping store"

const mappingColumns = `id, product_id, product_handle, product_title, collection_id, collection_handle,
		collection_title, grade, size_range, size_type, size, created_at, updated_at`

type mappingRepository struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
	now    func() time.Time
}

// NewMappingRepository creates a mapping store repository over the given table
func NewMappingRepository(db *sql.DB, table string, logger *zap.Logger) *mappingRepository {
	if table == "" {
		table = "collection_grade_mappings"
	}
	return &mappingRepository{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		logger: logger,
		now:    time.Now,
	}
}

func (r *mappingRepository) SelectByCollection(ctx context.Context, collectionHandle string) ([]*domain.MappingRow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE collection_handle = $1
		ORDER BY created_at, product_handle
	`, mappingColumns, r.table)

	rows, err := r.query(ctx, query, collectionHandle)
	if err != nil {
		r.logger.Error("Failed to select mappings by collection", zap.Error(err), zap.String("collection_handle", collectionHandle))
		return nil, err
	}
	return rows, nil
}

func (r *mappingRepository) SelectByCollectionAndProduct(ctx context.Context, collectionHandle, productHandle string) ([]*domain.MappingRow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE collection_handle = $1 AND product_handle = $2
		ORDER BY created_at
	`, mappingColumns, r.table)

	rows, err := r.query(ctx, query, collectionHandle, productHandle)
	if err != nil {
		r.logger.Error("Failed to select mappings by product",
			zap.Error(err),
			zap.String("collection_handle", collectionHandle),
			zap.String("product_handle", productHandle),
		)
		return nil, err
	}
	return rows, nil
}

func (r *mappingRepository) FindByHandleCaseInsensitive(ctx context.Context, handle string) ([]*domain.MappingRow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE product_handle ILIKE $1
	`, mappingColumns, r.table)

	rows, err := r.query(ctx, query, escapeLike(handle))
	if err != nil {
		r.logger.Error("Failed to find mappings by handle", zap.Error(err), zap.String("handle", handle))
		return nil, err
	}
	return rows, nil
}

func (r *mappingRepository) UpdateGradeAndSizeByHandle(ctx context.Context, handle string, grade *string, size domain.SizeSet) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET grade = $1, size = $2, updated_at = $3
		WHERE product_handle ILIKE $4
	`, r.table)

	res, err := r.db.ExecContext(ctx, query, grade, pq.StringArray(size.OrNil()), r.now(), escapeLike(handle))
	if err != nil {
		r.logger.Error("Failed to update mappings by handle", zap.Error(err), zap.String("handle", handle))
		return 0, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	return affected, nil
}

func (r *mappingRepository) UpsertRows(ctx context.Context, rows []*domain.MappingRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (product_id, collection_id) DO UPDATE SET
			product_handle = EXCLUDED.product_handle,
			product_title = EXCLUDED.product_title,
			collection_handle = EXCLUDED.collection_handle,
			collection_title = EXCLUDED.collection_title,
			grade = EXCLUDED.grade,
			size_range = EXCLUDED.size_range,
			size_type = EXCLUDED.size_type,
			size = EXCLUDED.size,
			updated_at = EXCLUDED.updated_at
	`, r.table, mappingColumns)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin upsert transaction", zap.Error(err))
		return 0, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to prepare mapping upsert", zap.Error(err))
		return 0, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	defer stmt.Close()

	now := r.now()
	for _, m := range rows {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now

		_, err := stmt.ExecContext(ctx,
			m.ID, m.ProductID, m.ProductHandle, m.ProductTitle, m.CollectionID, m.CollectionHandle,
			m.CollectionTitle, m.Grade, m.SizeRange, m.SizeType, pq.StringArray(m.Size.OrNil()),
			m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to upsert mapping",
				zap.Error(err),
				zap.String("product_id", m.ProductID),
				zap.String("collection_id", m.CollectionID),
			)
			return 0, &errors.ErrUpstream{Store: mappingStore, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit mapping upsert", zap.Error(err))
		return 0, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	return len(rows), nil
}

func (r *mappingRepository) DeleteRow(ctx context.Context, productID, collectionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE product_id = $1 AND collection_id = $2`, r.table)

	if _, err := r.db.ExecContext(ctx, query, productID, collectionID); err != nil {
		r.logger.Error("Failed to delete mapping",
			zap.Error(err),
			zap.String("product_id", productID),
			zap.String("collection_id", collectionID),
		)
		return &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	return nil
}

func (r *mappingRepository) ListByProduct(ctx context.Context, productID string) ([]*domain.MappingRow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE product_id = $1
		ORDER BY collection_title, collection_handle
	`, mappingColumns, r.table)

	rows, err := r.query(ctx, query, productID)
	if err != nil {
		r.logger.Error("Failed to list mappings by product", zap.Error(err), zap.String("product_id", productID))
		return nil, err
	}
	return rows, nil
}

func (r *mappingRepository) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE product_id = $1`, r.table)
	return r.exec(ctx, "Failed to delete product mappings", query, productID)
}

func (r *mappingRepository) DeleteByProductExcept(ctx context.Context, productID string, keep []string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE product_id = $1 AND NOT (collection_id = ANY($2))`, r.table)
	if keep == nil {
		keep = []string{}
	}
	return r.exec(ctx, "Failed to prune product mappings", query, productID, pq.StringArray(keep))
}

func (r *mappingRepository) exec(ctx context.Context, msg, query string, args ...interface{}) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error(msg, zap.Error(err))
		return 0, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	return affected, nil
}

func (r *mappingRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.MappingRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	defer rows.Close()

	out := []*domain.MappingRow{}
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, &errors.ErrUpstream{Store: mappingStore, Err: err}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.ErrUpstream{Store: mappingStore, Err: err}
	}
	return out, nil
}

func scanMapping(rows *sql.Rows) (*domain.MappingRow, error) {
	var m domain.MappingRow
	var grade, sizeRange, sizeType sql.NullString
	var size pq.StringArray
	err := rows.Scan(
		&m.ID, &m.ProductID, &m.ProductHandle, &m.ProductTitle, &m.CollectionID, &m.CollectionHandle,
		&m.CollectionTitle, &grade, &sizeRange, &sizeType, &size, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if grade.Valid {
		m.Grade = &grade.String
	}
	if sizeRange.Valid {
		m.SizeRange = &sizeRange.String
	}
	if sizeType.Valid {
		m.SizeType = &sizeType.String
	}
	if size != nil {
		m.Size = domain.SizeSet(size)
	}
	return &m, nil
}

// escapeLike makes ILIKE behave as case-insensitive equality
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
