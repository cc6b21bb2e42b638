package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/api/handlers"
	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/service"
	apperrors "github.com/jafarshop/gradeoverlay/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- mocks ---

type MockQuerier struct{ mock.Mock }

func (m *MockQuerier) ProductGrades(ctx context.Context, collectionHandle, productHandle string) (*service.ProductGradesResult, error) {
	args := m.Called(ctx, collectionHandle, productHandle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProductGradesResult), args.Error(1)
}

func (m *MockQuerier) CollectionHandles(ctx context.Context, q service.CollectionQuery) (*service.CollectionResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CollectionResult), args.Error(1)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	body, _ := args.Get(0).([]byte)
	return body, args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key string, body []byte) error {
	args := m.Called(ctx, key, body)
	return args.Error(0)
}

type MockBatchRunner struct{ mock.Mock }

func (m *MockBatchRunner) RunBatch(ctx context.Context, req service.BatchRequest) (*domain.BatchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}

type MockSyncRunner struct{ mock.Mock }

func (m *MockSyncRunner) Run(ctx context.Context, opts service.RunOptions) (*domain.Checkpoint, error) {
	args := m.Called(ctx, opts)
	cp, _ := args.Get(0).(*domain.Checkpoint)
	return cp, args.Error(1)
}

func (m *MockSyncRunner) Checkpoint(ctx context.Context) (*domain.Checkpoint, error) {
	args := m.Called(ctx)
	cp, _ := args.Get(0).(*domain.Checkpoint)
	return cp, args.Error(1)
}

func (m *MockSyncRunner) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockEditor struct{ mock.Mock }

func (m *MockEditor) SaveRow(ctx context.Context, req service.SaveRowRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func (m *MockEditor) DeleteCollection(ctx context.Context, productID, collectionID string) error {
	return m.Called(ctx, productID, collectionID).Error(0)
}

func (m *MockEditor) ListProduct(ctx context.Context, productID string) ([]*domain.MappingRow, error) {
	args := m.Called(ctx, productID)
	rows, _ := args.Get(0).([]*domain.MappingRow)
	return rows, args.Error(1)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) ListCollectionsOrdered(ctx context.Context) ([]domain.CollectionRef, error) {
	args := m.Called(ctx)
	cols, _ := args.Get(0).([]domain.CollectionRef)
	return cols, args.Error(1)
}

func (m *MockCatalog) ListProductsPage(ctx context.Context, after string) (*domain.ProductPage, error) {
	args := m.Called(ctx, after)
	page, _ := args.Get(0).(*domain.ProductPage)
	return page, args.Error(1)
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- storefront query ---

func TestGradeQuery_CollectionMode(t *testing.T) {
	querier := new(MockQuerier)
	querier.On("CollectionHandles", mock.Anything, service.CollectionQuery{CollectionHandle: "junior-shirts", Grade: "8"}).
		Return(&service.CollectionResult{
			CollectionHandle: "junior-shirts",
			Grade:            "8",
			Handles:          []string{"shirt-a"},
			AvailableGrades:  []string{"7", "8"},
			GradeByHandle:    map[string]string{"shirt-a": "7,8"},
			Total:            1,
		}, nil)

	r := gin.New()
	r.GET("/proxy/grades", handlers.HandleGradeQuery(querier, nil, zap.NewNop()))

	w := serve(r, http.MethodGet, "/proxy/grades?collection_handle=junior-shirts&grade=8", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handlers.StorefrontCacheControl, w.Header().Get("Cache-Control"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, []interface{}{"shirt-a"}, body["handles"])
	assert.Equal(t, []interface{}{"7", "8"}, body["available_grades"])
	assert.Equal(t, map[string]interface{}{"shirt-a": "7,8"}, body["gradeByHandle"])
}

func TestGradeQuery_PaginationParams(t *testing.T) {
	querier := new(MockQuerier)
	querier.On("CollectionHandles", mock.Anything, service.CollectionQuery{CollectionHandle: "col", Paginate: true, Page: 2, Limit: 0}).
		Return(&service.CollectionResult{CollectionHandle: "col", Handles: []string{}}, nil)

	r := gin.New()
	r.GET("/proxy/grades", handlers.HandleGradeQuery(querier, nil, zap.NewNop()))

	w := serve(r, http.MethodGet, "/proxy/grades?collection_handle=col&page=2&limit=abc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	querier.AssertExpectations(t)
}

func TestGradeQuery_ProductMode(t *testing.T) {
	querier := new(MockQuerier)
	querier.On("ProductGrades", mock.Anything, "junior", "shirt-a").
		Return(&service.ProductGradesResult{CollectionHandle: "junior", ProductHandle: "shirt-a", Grades: []string{"7", "8", "9"}, GradesCSV: "7,8,9"}, nil)

	r := gin.New()
	r.GET("/proxy/grades", handlers.HandleGradeQuery(querier, nil, zap.NewNop()))

	w := serve(r, http.MethodGet, "/proxy/grades?collection_handle=junior&product_handle=shirt-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"collection_handle":"junior","product_handle":"shirt-a","grades":["7","8","9"],"grades_csv":"7,8,9"}`, w.Body.String())
}

func TestGradeQuery_MissingCollection(t *testing.T) {
	querier := new(MockQuerier)
	r := gin.New()
	r.GET("/proxy/grades", handlers.HandleGradeQuery(querier, nil, zap.NewNop()))

	w := serve(r, http.MethodGet, "/proxy/grades?grade=8", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"collection_handle is required"}`, w.Body.String())
	querier.AssertNotCalled(t, "CollectionHandles", mock.Anything, mock.Anything)
}

func TestGradeQuery_StoreFailure(t *testing.T) {
	querier := new(MockQuerier)
	querier.On("CollectionHandles", mock.Anything, mock.Anything).
		Return(nil, &apperrors.ErrUpstream{Store: "mapping store", Err: errors.New("connection refused")})

	r := gin.New()
	r.GET("/proxy/grades", handlers.HandleGradeQuery(querier, nil, zap.NewNop()))

	w := serve(r, http.MethodGet, "/proxy/grades?collection_handle=col", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"mapping store error: connection refused"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestGradeQuery_ServesFromCache(t *testing.T) {
	querier := new(MockQuerier)
	cache := new(MockCache)
	cache.On("Get", mock.Anything, "collection_handle=col&grade=8").
		Return([]byte(`{"ok":true,"handles":["cached"]}`), true, nil)

	r := gin.New()
	r.GET("/proxy/grades", handlers.HandleGradeQuery(querier, cache, zap.NewNop()))

	w := serve(r, http.MethodGet, "/proxy/grades?grade=8&collection_handle=col&signature=abc&shop=x", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"handles":["cached"]}`, w.Body.String())
	querier.AssertNotCalled(t, "CollectionHandles", mock.Anything, mock.Anything)
}

func TestGradeQuery_CacheFailureIsIgnored(t *testing.T) {
	querier := new(MockQuerier)
	querier.On("CollectionHandles", mock.Anything, mock.Anything).
		Return(&service.CollectionResult{CollectionHandle: "col", Handles: []string{"a"}}, nil)
	cache := new(MockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.New("redis down"))
	cache.On("Set", mock.Anything, "collection_handle=col", mock.Anything).Return(errors.New("redis down"))

	r := gin.New()
	r.GET("/proxy/grades", handlers.HandleGradeQuery(querier, cache, zap.NewNop()))

	w := serve(r, http.MethodGet, "/proxy/grades?collection_handle=col", "")
	assert.Equal(t, http.StatusOK, w.Code)
	cache.AssertExpectations(t)
}

// --- sync ---

func TestSyncBatch_AcceptsEncodedTotals(t *testing.T) {
	runner := new(MockBatchRunner)
	runner.On("RunBatch", mock.Anything, service.BatchRequest{
		Offset:    200,
		Limit:     200,
		RunTotals: domain.SyncRunTotals{Batches: 1, UniqueHandles: 150},
	}).Return(&domain.BatchResult{
		BatchID:   400,
		Done:      true,
		Summary:   domain.BatchSummary{Offset: 200, Limit: 200, NextOffset: 400},
		RunTotals: domain.SyncRunTotals{Batches: 2, UniqueHandles: 230},
	}, nil)

	r := gin.New()
	r.POST("/admin/sync/batch", handlers.HandleSyncBatch(runner, 200, zap.NewNop()))

	w := serve(r, http.MethodPost, "/admin/sync/batch", `{"offset":200,"runTotals":"{\"batches\":1,\"uniqueHandles\":150}"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		OK        bool                 `json:"ok"`
		Done      bool                 `json:"done"`
		BatchID   int                  `json:"batchId"`
		RunTotals domain.SyncRunTotals `json:"runTotals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.True(t, body.Done)
	assert.Equal(t, 400, body.BatchID)
	assert.Equal(t, 230, body.RunTotals.UniqueHandles)
}

func TestSyncBatch_AcceptsObjectTotals(t *testing.T) {
	runner := new(MockBatchRunner)
	runner.On("RunBatch", mock.Anything, service.BatchRequest{Offset: 0, Limit: 50, RunTotals: domain.SyncRunTotals{MissingInShopify: 2}}).
		Return(&domain.BatchResult{BatchID: 50}, nil)

	r := gin.New()
	r.POST("/admin/sync/batch", handlers.HandleSyncBatch(runner, 200, zap.NewNop()))

	w := serve(r, http.MethodPost, "/admin/sync/batch", `{"limit":50,"runTotals":{"missingInShopify":2}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	runner.AssertExpectations(t)
}

func TestSyncBatch_Errors(t *testing.T) {
	runner := new(MockBatchRunner)
	runner.On("RunBatch", mock.Anything, mock.Anything).
		Return(nil, &apperrors.ErrUpstream{Store: "source table", Err: errors.New("timeout")})

	r := gin.New()
	r.POST("/admin/sync/batch", handlers.HandleSyncBatch(runner, 200, zap.NewNop()))

	w := serve(r, http.MethodPost, "/admin/sync/batch", `{"runTotals":"not json"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/admin/sync/batch", `{"offset":0}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"source table error: timeout"}`, w.Body.String())
}

func TestSyncRun(t *testing.T) {
	driver := new(MockSyncRunner)
	driver.On("Run", mock.Anything, mock.MatchedBy(func(o service.RunOptions) bool { return o.Restart && o.MaxBatches == 3 })).
		Return(&domain.Checkpoint{Offset: 600, Limit: 200, Done: false}, nil)

	r := gin.New()
	r.POST("/admin/sync/run", handlers.HandleSyncRun(driver, zap.NewNop()))

	w := serve(r, http.MethodPost, "/admin/sync/run?restart=true&max_batches=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"offset":600`)

	w = serve(r, http.MethodPost, "/admin/sync/run?max_batches=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncRun_FailureReportsCheckpoint(t *testing.T) {
	driver := new(MockSyncRunner)
	driver.On("Run", mock.Anything, mock.Anything).
		Return(&domain.Checkpoint{Offset: 400}, errors.New("batch at offset 400: boom"))

	r := gin.New()
	r.POST("/admin/sync/run", handlers.HandleSyncRun(driver, zap.NewNop()))

	w := serve(r, http.MethodPost, "/admin/sync/run", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"offset":400`)
	assert.Contains(t, w.Body.String(), `"ok":false`)
}

func TestSyncReset(t *testing.T) {
	driver := new(MockSyncRunner)
	driver.On("Reset", mock.Anything).Return(nil).Once()

	r := gin.New()
	r.DELETE("/admin/sync/checkpoint", handlers.HandleSyncReset(driver, zap.NewNop()))

	w := serve(r, http.MethodDelete, "/admin/sync/checkpoint", "")
	assert.Equal(t, http.StatusOK, w.Code)
	driver.AssertExpectations(t)
}

// --- mappings ---

func TestSaveMapping(t *testing.T) {
	editor := new(MockEditor)
	editor.On("SaveRow", mock.Anything, mock.MatchedBy(func(req service.SaveRowRequest) bool {
		return req.ProductID == "p1" && len(req.Collections) == 1 && req.Collections[0].Grade == "7,8"
	})).Return(1, nil)

	r := gin.New()
	r.POST("/admin/mappings/save", handlers.HandleSaveMapping(editor, zap.NewNop()))

	w := serve(r, http.MethodPost, "/admin/mappings/save",
		`{"product_id":"p1","product_handle":"shirt-a","collections":[{"collection_id":"c1","collection_handle":"junior","grade":"7,8"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"rows":1}`, w.Body.String())

	w = serve(r, http.MethodPost, "/admin/mappings/save", `{"product_handle":"shirt-a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMapping(t *testing.T) {
	editor := new(MockEditor)
	editor.On("DeleteCollection", mock.Anything, "p1", "c1").Return(nil).Once()

	r := gin.New()
	r.POST("/admin/mappings/delete", handlers.HandleDeleteMapping(editor, zap.NewNop()))

	w := serve(r, http.MethodPost, "/admin/mappings/delete", `{"product_id":"p1","collection_id":"c1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/admin/mappings/delete", `{"product_id":"p1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	editor.AssertExpectations(t)
}

func TestListMappings(t *testing.T) {
	grade := "7"
	editor := new(MockEditor)
	editor.On("ListProduct", mock.Anything, "p1").
		Return([]*domain.MappingRow{{ProductID: "p1", CollectionID: "c1", Grade: &grade}}, nil)

	r := gin.New()
	r.GET("/admin/mappings/:productId", handlers.HandleListMappings(editor, zap.NewNop()))

	w := serve(r, http.MethodGet, "/admin/mappings/p1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"grade":"7"`)
}

// --- catalog ---

func TestListCollections(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("ListCollectionsOrdered", mock.Anything).Return(nil, nil).Once()
	catalog.On("ListCollectionsOrdered", mock.Anything).
		Return(nil, &apperrors.ErrCatalog{Messages: []string{"Access denied"}}).Once()

	r := gin.New()
	r.GET("/admin/catalog/collections", handlers.HandleListCollections(catalog, zap.NewNop()))

	w := serve(r, http.MethodGet, "/admin/catalog/collections", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"collections":[]}`, w.Body.String())

	w = serve(r, http.MethodGet, "/admin/catalog/collections", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"graphQL errors: Access denied"}`, w.Body.String())
}

func TestListProducts(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("ListProductsPage", mock.Anything, "cursor-1").Return(&domain.ProductPage{
		Items:       []domain.ProductListItem{{ID: "p1", Handle: "shirt-a", Size: []string{"S"}}},
		HasNextPage: true,
		EndCursor:   "cursor-2",
	}, nil)

	r := gin.New()
	r.GET("/admin/catalog/products", handlers.HandleListProducts(catalog, zap.NewNop()))

	w := serve(r, http.MethodGet, "/admin/catalog/products?after=cursor-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"endCursor":"cursor-2"`)
	assert.Contains(t, w.Body.String(), `"handle":"shirt-a"`)
}
