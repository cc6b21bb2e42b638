package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/jafarshop/gradeoverlay/pkg/errors"
)

// respondError maps typed errors to a status and writes {"ok": false, "error": ...}
func respondError(c *gin.Context, err error, logger *zap.Logger) {
	status := http.StatusInternalServerError

	var validation *apperrors.ErrValidation
	var unauthorized *apperrors.ErrUnauthorized
	var notFound *apperrors.ErrNotFound
	var catalog *apperrors.ErrCatalog
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &unauthorized):
		status = http.StatusUnauthorized
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &catalog):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	body := gin.H{"ok": false, "error": err.Error()}
	if validation != nil && len(validation.Fields) > 0 {
		body["fields"] = validation.Fields
	}
	c.JSON(status, body)
}
