package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
)

// HandleListCollections handles GET /admin/catalog/collections
func HandleListCollections(catalog CatalogBrowser, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cols, err := catalog.ListCollectionsOrdered(c.Request.Context())
		if err != nil {
			respondError(c, err, logger)
			return
		}
		if cols == nil {
			cols = []domain.CollectionRef{}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "collections": cols})
	}
}

// HandleListProducts handles GET /admin/catalog/products?after=<cursor>
func HandleListProducts(catalog CatalogBrowser, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := catalog.ListProductsPage(c.Request.Context(), c.Query("after"))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":       true,
			"products": page.Items,
			"pageInfo": gin.H{"hasNextPage": page.HasNextPage, "endCursor": page.EndCursor},
		})
	}
}
