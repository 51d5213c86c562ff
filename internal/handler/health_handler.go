package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoflow/internal/port"
)

// DBPinger is the slice of *sqlx.DB the readiness probe needs.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db    DBPinger
	cache port.DocumentCache
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, cache port.DocumentCache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service is ready only when both the
// database and the document cache backend answer.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	if err := h.cache.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "document cache not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
