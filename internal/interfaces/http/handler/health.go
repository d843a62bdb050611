package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/backend/internal/infrastructure/persistence"
)

// HealthHandler exposes liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	db *persistence.Database
}

// NewHealthHandler creates a health handler
func NewHealthHandler(db *persistence.Database) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports process liveness
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok"})
}

// Ready reports readiness, including database connectivity
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.InternalError(c, "Database unavailable")
		return
	}
	h.Success(c, gin.H{"status": "ready"})
}
