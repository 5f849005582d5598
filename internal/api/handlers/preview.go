package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/service"
	"github.com/denkido/catalogimport/pkg/errors"
)

// HandlePreview handles POST /v1/preview: assembled payloads and unresolved
// components for one model, no Shopify calls
func HandlePreview(importer *service.ImportService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		report, err := importer.Preview(req.Brand, req.ModelName, req.SKU)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			logger.Error("Failed to build preview", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, report)
	}
}
