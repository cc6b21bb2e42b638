package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/service"
	apperrors "github.com/jafarshop/gradeoverlay/pkg/errors"
)

func juniorShirts() *memMappings {
	return &memMappings{rows: []*domain.MappingRow{
		{ProductID: "p-a", ProductHandle: "shirt-a", CollectionID: "c1", CollectionHandle: "junior-shirts", Grade: strPtr("7,8")},
		{ProductID: "p-b", ProductHandle: "shirt-b", CollectionID: "c1", CollectionHandle: "junior-shirts", Grade: strPtr("")},
		{ProductID: "p-c", ProductHandle: "shirt-c", CollectionID: "c2", CollectionHandle: "senior-shirts", Grade: strPtr("11")},
	}}
}

func TestCollectionHandles_GradeFilter(t *testing.T) {
	svc := service.NewQueryService(juniorShirts(), &fakeCatalog{}, zap.NewNop())

	res, err := svc.CollectionHandles(context.Background(), service.CollectionQuery{CollectionHandle: "junior-shirts", Grade: "8"})
	require.NoError(t, err)

	assert.Equal(t, []string{"shirt-a"}, res.Handles)
	assert.Equal(t, map[string]string{"shirt-a": "7,8"}, res.GradeByHandle)
	assert.Equal(t, []string{"7", "8"}, res.AvailableGrades)
	assert.Equal(t, 1, res.Total)
	assert.False(t, res.Ordered)
}

func TestCollectionHandles_UnconstrainedIsAll(t *testing.T) {
	svc := service.NewQueryService(juniorShirts(), &fakeCatalog{}, zap.NewNop())

	res, err := svc.CollectionHandles(context.Background(), service.CollectionQuery{CollectionHandle: "junior-shirts"})
	require.NoError(t, err)

	assert.Equal(t, []string{"shirt-a", "shirt-b"}, res.Handles)
	assert.Equal(t, "all", res.GradeByHandle["shirt-b"])
}

func TestCollectionHandles_AppliesCatalogOrder(t *testing.T) {
	store := &memMappings{rows: []*domain.MappingRow{
		{ProductID: "1", ProductHandle: "a", CollectionID: "c", CollectionHandle: "col"},
		{ProductID: "2", ProductHandle: "b", CollectionID: "c", CollectionHandle: "col"},
		{ProductID: "3", ProductHandle: "c", CollectionID: "c", CollectionHandle: "col"},
	}}
	catalog := &fakeCatalog{order: map[string][]string{"col": {"c", "a"}}}
	svc := service.NewQueryService(store, catalog, zap.NewNop())

	res, err := svc.CollectionHandles(context.Background(), service.CollectionQuery{CollectionHandle: "col"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, res.Handles)
	assert.True(t, res.Ordered)
}

func TestCollectionHandles_Pagination(t *testing.T) {
	store := &memMappings{}
	for _, h := range []string{"a", "b", "c", "d", "e"} {
		store.rows = append(store.rows, &domain.MappingRow{ProductID: h, ProductHandle: h, CollectionID: "c", CollectionHandle: "col"})
	}
	svc := service.NewQueryService(store, &fakeCatalog{}, zap.NewNop())
	ctx := context.Background()

	res, err := svc.CollectionHandles(ctx, service.CollectionQuery{CollectionHandle: "col", Paginate: true, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, res.Handles)
	assert.Equal(t, 5, res.Total)
	assert.True(t, res.HasMore)
	assert.Len(t, res.GradeByHandle, 2)

	res, err = svc.CollectionHandles(ctx, service.CollectionQuery{CollectionHandle: "col", Paginate: true, Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Handles)
	assert.False(t, res.HasMore)

	res, err = svc.CollectionHandles(ctx, service.CollectionQuery{CollectionHandle: "col", Paginate: true, Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, service.MaxPageLimit, res.Limit)
	assert.Len(t, res.Handles, 5)
}

func TestCollectionHandles_RequiresCollection(t *testing.T) {
	svc := service.NewQueryService(juniorShirts(), &fakeCatalog{}, zap.NewNop())

	_, err := svc.CollectionHandles(context.Background(), service.CollectionQuery{CollectionHandle: "  "})
	var validation *apperrors.ErrValidation
	require.True(t, errors.As(err, &validation))
}

func TestProductGrades(t *testing.T) {
	store := &memMappings{rows: []*domain.MappingRow{
		{ProductID: "p1", ProductHandle: "shirt-a", CollectionID: "c1", CollectionHandle: "junior", Grade: strPtr("7,8")},
		{ProductID: "p2", ProductHandle: "shirt-a", CollectionID: "c1", CollectionHandle: "junior", Grade: strPtr("9")},
		{ProductID: "p3", ProductHandle: "shirt-b", CollectionID: "c1", CollectionHandle: "junior", Grade: strPtr("12")},
	}}
	svc := service.NewQueryService(store, &fakeCatalog{}, zap.NewNop())

	res, err := svc.ProductGrades(context.Background(), "junior", "shirt-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "8", "9"}, res.Grades)
	assert.Equal(t, "7,8,9", res.GradesCSV)
}
