package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/service"
	"github.com/jafarshop/gradeoverlay/pkg/errors"
)

// HandleSaveMapping handles POST /admin/mappings/save
func HandleSaveMapping(editor MappingEditor, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SaveRowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, &errors.ErrValidation{Message: "invalid request body: " + err.Error()}, logger)
			return
		}
		n, err := editor.SaveRow(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "rows": n})
	}
}

type deleteMappingRequest struct {
	ProductID    string `json:"product_id" binding:"required"`
	CollectionID string `json:"collection_id" binding:"required"`
}

// HandleDeleteMapping handles POST /admin/mappings/delete
func HandleDeleteMapping(editor MappingEditor, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deleteMappingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, &errors.ErrValidation{Message: "invalid request body: " + err.Error()}, logger)
			return
		}
		if err := editor.DeleteCollection(c.Request.Context(), req.ProductID, req.CollectionID); err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// HandleListMappings handles GET /admin/mappings/:productId
func HandleListMappings(editor MappingEditor, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := editor.ListProduct(c.Request.Context(), c.Param("productId"))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "rows": rows})
	}
}
