package handler

import (
	"net/http"

	"tasktracker/internal/service"
	"tasktracker/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsHandler struct {
	stats  *service.StatsService
	logger *zap.Logger
}

func NewStatsHandler(stats *service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	stats, err := h.stats.Compute(c.Request.Context())
	if err != nil {
		log.Error("GetStats: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Health handles GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Task tracker API is running"})
}
