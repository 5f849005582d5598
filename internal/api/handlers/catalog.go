package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/catalog"
	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/pkg/errors"
)

// HandleListBrands handles GET /v1/catalog/brands
func HandleListBrands(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"brands": cat.Brands()})
	}
}

// HandleSearchModels handles GET /v1/catalog/models
// Query params: q (fuzzy search term), brand (filter), limit
func HandleSearchModels(cat *catalog.Catalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}

		brand := c.Query("brand")
		hits := cat.Search(c.Query("q"), 0)

		if brand != "" {
			filtered := hits[:0]
			for _, hit := range hits {
				if hit.Brand == brand {
					filtered = append(filtered, hit)
				}
			}
			hits = filtered
		}
		if limit > 0 && len(hits) > limit {
			hits = hits[:limit]
		}

		c.JSON(http.StatusOK, gin.H{"models": hits})
	}
}

// HandleGetModel handles GET /v1/catalog/models/:brand/:model
func HandleGetModel(cat *catalog.Catalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, err := cat.Model(c.Param("brand"), c.Param("model"))
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "model not found"})
				return
			}
			logger.Error("Failed to get model", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, model)
	}
}

// HandleListGIDs handles GET /v1/catalog/gids
// Without a category it lists the loaded categories; with one it returns
// the table's mappings.
func HandleListGIDs(gids *catalog.GIDRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Query("category")
		if category == "" {
			c.JSON(http.StatusOK, gin.H{"categories": gids.Categories()})
			return
		}

		mappings, err := gids.Mappings(domain.Category(category))
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
				return
			}
			logger.Error("Failed to list gid mappings", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"category": category,
			"mappings": mappings,
		})
	}
}
