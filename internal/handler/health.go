package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

const (
	serviceName    = "nutrifast"
	serviceVersion = "1.0.0"
)

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// GetHealth pings the database
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed: database unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, api.HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Service:  serviceName,
			Version:  serviceVersion,
			Error:    stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, api.HealthResponse{
		Status:   "healthy",
		Database: "connected",
		Service:  serviceName,
		Version:  serviceVersion,
	})
}
