package service_test

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/service"
)

// --- in-memory stores ---

type fakeSource struct {
	rows    []domain.SourceRow
	noCount bool
	err     error
}

func (f *fakeSource) Page(_ context.Context, offset, limit int) (*domain.SourcePage, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := &domain.SourcePage{Rows: []domain.SourceRow{}}
	for i := offset; i < offset+limit && i < len(f.rows); i++ {
		page.Rows = append(page.Rows, f.rows[i])
	}
	if !f.noCount {
		total := int64(len(f.rows))
		page.Total = &total
	}
	return page, nil
}

type memMappings struct {
	mu   sync.Mutex
	rows []*domain.MappingRow

	upserts int
	updates int
}

func (m *memMappings) copyRows(match func(r *domain.MappingRow) bool) []*domain.MappingRow {
	out := []*domain.MappingRow{}
	for _, r := range m.rows {
		if match(r) {
			c := *r
			out = append(out, &c)
		}
	}
	return out
}

func (m *memMappings) SelectByCollection(_ context.Context, collectionHandle string) ([]*domain.MappingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyRows(func(r *domain.MappingRow) bool { return r.CollectionHandle == collectionHandle }), nil
}

func (m *memMappings) SelectByCollectionAndProduct(_ context.Context, collectionHandle, productHandle string) ([]*domain.MappingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyRows(func(r *domain.MappingRow) bool {
		return r.CollectionHandle == collectionHandle && r.ProductHandle == productHandle
	}), nil
}

func (m *memMappings) FindByHandleCaseInsensitive(_ context.Context, handle string) ([]*domain.MappingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyRows(func(r *domain.MappingRow) bool { return strings.EqualFold(r.ProductHandle, handle) }), nil
}

func (m *memMappings) UpdateGradeAndSizeByHandle(_ context.Context, handle string, grade *string, size domain.SizeSet) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	var n int64
	for _, r := range m.rows {
		if strings.EqualFold(r.ProductHandle, handle) {
			r.Grade = grade
			r.Size = size.OrNil()
			n++
		}
	}
	return n, nil
}

func (m *memMappings) UpsertRows(_ context.Context, rows []*domain.MappingRow) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	for _, in := range rows {
		c := *in
		replaced := false
		for i, r := range m.rows {
			if r.ProductID == c.ProductID && r.CollectionID == c.CollectionID {
				m.rows[i] = &c
				replaced = true
				break
			}
		}
		if !replaced {
			m.rows = append(m.rows, &c)
		}
	}
	return len(rows), nil
}

func (m *memMappings) DeleteRow(_ context.Context, productID, collectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(func(r *domain.MappingRow) bool { return r.ProductID == productID && r.CollectionID == collectionID })
	return nil
}

func (m *memMappings) ListByProduct(_ context.Context, productID string) ([]*domain.MappingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyRows(func(r *domain.MappingRow) bool { return r.ProductID == productID }), nil
}

func (m *memMappings) DeleteByProduct(_ context.Context, productID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(func(r *domain.MappingRow) bool { return r.ProductID == productID }), nil
}

func (m *memMappings) DeleteByProductExcept(_ context.Context, productID string, keep []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	return m.remove(func(r *domain.MappingRow) bool { return r.ProductID == productID && !kept[r.CollectionID] }), nil
}

func (m *memMappings) remove(match func(r *domain.MappingRow) bool) int64 {
	var n int64
	out := m.rows[:0]
	for _, r := range m.rows {
		if match(r) {
			n++
			continue
		}
		out = append(out, r)
	}
	m.rows = out
	return n
}

// --- catalog ---

type fakeCatalog struct {
	products map[string]*domain.CatalogProduct
	errs     map[string]error
	order    map[string][]string
	lookups  []string
}

func (f *fakeCatalog) GetProductByHandle(_ context.Context, handle string) (*domain.CatalogProduct, error) {
	f.lookups = append(f.lookups, handle)
	if err := f.errs[handle]; err != nil {
		return nil, err
	}
	return f.products[handle], nil
}

func (f *fakeCatalog) ListCollectionProductHandlesOrdered(_ context.Context, collectionHandle string) []string {
	if h, ok := f.order[collectionHandle]; ok {
		return h
	}
	return []string{}
}

// --- testify mocks ---

type MockBatchRunner struct{ mock.Mock }

func (m *MockBatchRunner) RunBatch(ctx context.Context, req service.BatchRequest) (*domain.BatchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}

type MockMappingRepository struct {
	mock.Mock
	memMappings
}

func (m *MockMappingRepository) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMappingRepository) DeleteByProductExcept(ctx context.Context, productID string, keep []string) (int64, error) {
	args := m.Called(ctx, productID, keep)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMappingRepository) UpsertRows(ctx context.Context, rows []*domain.MappingRow) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

func (m *MockMappingRepository) DeleteRow(ctx context.Context, productID, collectionID string) error {
	args := m.Called(ctx, productID, collectionID)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }
