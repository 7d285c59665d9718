package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_search/internal/utils"
)

var startTime = time.Now()

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db         Pinger
	redis      Pinger
	catalog    Pinger
	llmEnabled bool
}

// NewHealthHandler creates a new HealthHandler. redis and catalog may be nil
// when those backends are not configured.
func NewHealthHandler(db, redis, catalog Pinger, llmEnabled bool) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, catalog: catalog, llmEnabled: llmEnabled}
}

// GetHealth responds with service and dependency status. The database is
// the only dependency whose failure marks the service unhealthy.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := pingStatus(ctx, h.db)
	llmStatus := "disabled"
	if h.llmEnabled {
		llmStatus = "enabled"
	}

	data := gin.H{
		"status":    "ok",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    int(time.Since(startTime).Seconds()),
		"database":  dbStatus,
		"redis":     pingStatus(ctx, h.redis),
		"catalog":   pingStatus(ctx, h.catalog),
		"llm":       llmStatus,
	}

	if dbStatus != "connected" {
		data["status"] = "degraded"
		c.JSON(503, utils.Response{
			Success: false,
			Code:    503,
			Message: "Service is degraded",
			Data:    data,
			Meta:    utils.NewMeta(c),
		})
		return
	}

	utils.Success(c, 200, "Service is healthy", data)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}
