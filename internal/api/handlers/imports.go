package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/repository"
	"github.com/denkido/catalogimport/internal/service"
	"github.com/denkido/catalogimport/pkg/errors"
)

// HandleSubmitImport handles POST /v1/imports. The batch runs synchronously;
// the response carries the full run report.
func HandleSubmitImport(importer *service.ImportService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sel service.ImportSelection
		if err := c.ShouldBindJSON(&sel); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sel.Source = "api"

		report, err := importer.ImportBatch(c.Request.Context(), sel)
		if err != nil {
			switch err.(type) {
			case *errors.ErrValidation:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				logger.Error("Import run aborted", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "import aborted"})
			}
			return
		}

		c.JSON(http.StatusCreated, report)
	}
}

// HandleListImports handles GET /v1/imports
func HandleListImports(repos *repository.Repositories, journalEnabled bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !journalEnabled {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import journal is disabled"})
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}

		runs, err := repos.Run.List(c.Request.Context(), limit)
		if err != nil {
			logger.Error("Failed to list import runs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"runs": runs})
	}
}

// HandleGetImport handles GET /v1/imports/:id
func HandleGetImport(repos *repository.Repositories, journalEnabled bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !journalEnabled {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import journal is disabled"})
			return
		}

		runID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
			return
		}

		run, err := repos.Run.GetByID(c.Request.Context(), runID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			logger.Error("Failed to get import run", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		results, err := repos.Result.GetByRunID(c.Request.Context(), runID)
		if err != nil {
			logger.Error("Failed to get import results", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, service.ImportReport{Run: *run, Results: results})
	}
}
