package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/repository"
	"github.com/jafarshop/gradeoverlay/pkg/errors"
)

// BatchRequest is one invocation of the grade sync. RunTotals is the snapshot returned by the previous batch.
type BatchRequest struct {
	Offset    int                  `json:"offset"`
	Limit     int                  `json:"limit"`
	RunTotals domain.SyncRunTotals `json:"runTotals"`
}

// BatchRunner processes one page of the source table
type BatchRunner interface {
	RunBatch(ctx context.Context, req BatchRequest) (*domain.BatchResult, error)
}

// SyncService reconciles the grade source table against the mapping store and the live catalog.
// It keeps no state between calls; everything is derived from the request.
type SyncService struct {
	source   repository.SourceRepository
	mappings repository.MappingRepository
	catalog  ProductLookup
	logger   *zap.Logger
}

func NewSyncService(source repository.SourceRepository, mappings repository.MappingRepository, catalog ProductLookup, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{source: source, mappings: mappings, catalog: catalog, logger: logger}
}

type sourceEntry struct {
	handle string
	grade  string
}

// RunBatch processes source rows [offset, offset+limit). Handles are handled one at a time; a store or
// catalog failure aborts the batch and leaves earlier writes of the batch in place.
func (s *SyncService) RunBatch(ctx context.Context, req BatchRequest) (*domain.BatchResult, error) {
	if req.Limit <= 0 {
		return nil, &errors.ErrValidation{Message: "limit must be positive", Fields: map[string]string{"limit": "must be > 0"}}
	}
	if req.Offset < 0 {
		return nil, &errors.ErrValidation{Message: "offset must not be negative", Fields: map[string]string{"offset": "must be >= 0"}}
	}

	page, err := s.source.Page(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("read source rows at offset %d: %w", req.Offset, err)
	}

	summary := domain.BatchSummary{
		Offset:     req.Offset,
		Limit:      req.Limit,
		SourceRows: len(page.Rows),
		Total:      page.Total,
	}
	batchID := domain.BatchIDFor(req.Offset, req.Limit)

	if len(page.Rows) == 0 {
		summary.NextOffset = req.Offset
		s.logger.Info("Grade sync reached end of source", zap.Int("offset", req.Offset))
		return &domain.BatchResult{
			BatchID:   batchID,
			Done:      true,
			Summary:   summary,
			RunTotals: req.RunTotals,
		}, nil
	}

	entries := dedupeSourceRows(page.Rows)
	summary.UniqueHandles = len(entries)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.syncHandle(ctx, e, &summary); err != nil {
			s.logger.Error("Grade sync batch aborted",
				zap.Int("offset", req.Offset),
				zap.String("handle", e.handle),
				zap.Error(err),
			)
			return nil, fmt.Errorf("sync handle %q: %w", e.handle, err)
		}
	}

	summary.NextOffset = req.Offset + req.Limit
	summary.HasMore = page.Total == nil || int64(summary.NextOffset) < *page.Total

	result := &domain.BatchResult{
		BatchID:   batchID,
		Done:      !summary.HasMore,
		Summary:   summary,
		RunTotals: req.RunTotals.Add(summary.Totals()),
	}

	s.logger.Info("Grade sync batch processed",
		zap.Int("offset", req.Offset),
		zap.Int("source_rows", summary.SourceRows),
		zap.Int("unique_handles", summary.UniqueHandles),
		zap.Int("updated_rows", summary.UpdatedRows),
		zap.Int("inserted_rows", summary.InsertedRows),
		zap.Int("missing", summary.MissingInShopify),
		zap.Bool("done", result.Done),
	)
	return result, nil
}

func (s *SyncService) syncHandle(ctx context.Context, e sourceEntry, summary *domain.BatchSummary) error {
	grade := optionalString(e.grade)

	existing, err := s.mappings.FindByHandleCaseInsensitive(ctx, e.handle)
	if err != nil {
		return err
	}

	if len(existing) > 0 {
		// stored labels are kept whole; a label may itself contain a comma
		var sizes domain.SizeSet
		for _, row := range existing {
			sizes = sizes.Merge(row.Size)
		}
		n, err := s.mappings.UpdateGradeAndSizeByHandle(ctx, e.handle, grade, sizes)
		if err != nil {
			return err
		}
		summary.UpdatedHandles++
		summary.UpdatedRows += int(n)
		s.logger.Debug("Updated grade rows", zap.String("handle", e.handle), zap.Int64("rows", n))
		return nil
	}

	product, err := s.catalog.GetProductByHandle(ctx, e.handle)
	if err != nil {
		return err
	}
	if product == nil {
		summary.MissingInShopify++
		s.logger.Debug("Handle not found in catalog", zap.String("handle", e.handle))
		return nil
	}
	if len(product.Collections) == 0 {
		summary.NoCollections++
		s.logger.Debug("Product has no collections, skipping", zap.String("handle", e.handle))
		return nil
	}

	rows := newMappingRows(product, grade)
	n, err := s.mappings.UpsertRows(ctx, rows)
	if err != nil {
		return err
	}
	summary.InsertedProducts++
	summary.InsertedRows += n
	s.logger.Debug("Inserted grade rows", zap.String("handle", e.handle), zap.Int("rows", n))
	return nil
}

// newMappingRows builds one row per collection membership, all sharing grade and size profile
func newMappingRows(product *domain.CatalogProduct, grade *string) []*domain.MappingRow {
	sizes := domain.NewSizeSet(product.OptionValues("size")...).OrNil()
	sizeType := optionalString(product.FirstOptionValue("size type"))
	sizeRange := optionalString(product.FirstOptionValue("size range"))

	rows := make([]*domain.MappingRow, 0, len(product.Collections))
	for _, c := range product.Collections {
		rows = append(rows, &domain.MappingRow{
			ProductID:        product.ID,
			ProductHandle:    product.Handle,
			ProductTitle:     product.Title,
			CollectionID:     c.ID,
			CollectionHandle: c.Handle,
			CollectionTitle:  c.Title,
			Grade:            grade,
			SizeRange:        sizeRange,
			SizeType:         sizeType,
			Size:             sizes,
		})
	}
	return rows
}

// dedupeSourceRows keeps the first spelling of each handle (case-insensitive) and the first non-empty grade
func dedupeSourceRows(rows []domain.SourceRow) []sourceEntry {
	index := make(map[string]int, len(rows))
	out := make([]sourceEntry, 0, len(rows))
	for _, r := range rows {
		handle := strings.TrimSpace(r.Handle)
		if handle == "" {
			continue
		}
		grade := strings.TrimSpace(r.Grade)
		key := domain.FoldHandle(handle)
		if i, ok := index[key]; ok {
			if out[i].grade == "" && grade != "" {
				out[i].grade = grade
			}
			continue
		}
		index[key] = len(out)
		out = append(out, sourceEntry{handle: handle, grade: grade})
	}
	return out
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
