package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/repository"
	"github.com/jafarshop/gradeoverlay/internal/service"
	"github.com/jafarshop/gradeoverlay/pkg/errors"
)

// StorefrontCacheControl lets the shop's CDN reuse responses briefly
const StorefrontCacheControl = "public, max-age=30, stale-while-revalidate=300"

type productGradesResponse struct {
	OK bool `json:"ok"`
	*service.ProductGradesResult
}

type collectionResponse struct {
	OK bool `json:"ok"`
	*service.CollectionResult
}

// HandleGradeQuery handles GET /proxy/grades.
// product_handle selects product mode; otherwise the collection's handles are listed.
// cache may be nil.
func HandleGradeQuery(querier GradeQuerier, cache repository.ResponseCache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		collectionHandle := strings.TrimSpace(c.Query("collection_handle"))
		if collectionHandle == "" {
			respondError(c, &errors.ErrValidation{Message: "collection_handle is required"}, logger)
			return
		}
		productHandle := strings.TrimSpace(c.Query("product_handle"))

		key := queryCacheKey(c.Request.URL.Query())
		if cache != nil {
			body, ok, err := cache.Get(c.Request.Context(), key)
			if err != nil {
				logger.Warn("Response cache read failed", zap.Error(err))
			} else if ok {
				c.Header("Cache-Control", StorefrontCacheControl)
				c.Data(http.StatusOK, "application/json; charset=utf-8", body)
				return
			}
		}

		var payload interface{}
		if productHandle != "" {
			res, err := querier.ProductGrades(c.Request.Context(), collectionHandle, productHandle)
			if err != nil {
				respondError(c, err, logger)
				return
			}
			payload = productGradesResponse{OK: true, ProductGradesResult: res}
		} else {
			q := service.CollectionQuery{
				CollectionHandle: collectionHandle,
				Grade:            c.Query("grade"),
			}
			if page, ok := c.GetQuery("page"); ok {
				q.Paginate = true
				q.Page, _ = strconv.Atoi(strings.TrimSpace(page))
			}
			if limit, ok := c.GetQuery("limit"); ok {
				q.Paginate = true
				q.Limit, _ = strconv.Atoi(strings.TrimSpace(limit))
			}
			res, err := querier.CollectionHandles(c.Request.Context(), q)
			if err != nil {
				respondError(c, err, logger)
				return
			}
			payload = collectionResponse{OK: true, CollectionResult: res}
		}

		body, err := json.Marshal(payload)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		if cache != nil {
			if err := cache.Set(c.Request.Context(), key, body); err != nil {
				logger.Warn("Response cache write failed", zap.Error(err))
			}
		}
		c.Header("Cache-Control", StorefrontCacheControl)
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}

// queryCacheKey keeps only the parameters that change the answer, in a stable order
func queryCacheKey(q url.Values) string {
	key := url.Values{}
	for _, name := range []string{"collection_handle", "product_handle", "grade", "page", "limit"} {
		if v, ok := q[name]; ok && len(v) > 0 {
			key.Set(name, strings.TrimSpace(v[0]))
		}
	}
	return key.Encode()
}
