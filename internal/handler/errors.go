package handler

import (
	"errors"
	"net/http"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps a domain error to a status and a {message} body.
// Store failures never expose the underlying error text.
func writeError(c *gin.Context, logger *zap.Logger, err error, storeMsg string) {
	var storeErr *repository.StoreError
	switch {
	case errors.Is(err, model.ErrInvalidTask):
		logger.Warn("Rejected invalid task input", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
	case errors.As(err, &storeErr) && storeErr.Write:
		c.JSON(http.StatusBadRequest, gin.H{"message": storeMsg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": storeMsg})
	}
}
