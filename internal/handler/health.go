package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agribuddy/internal/pkg/postgres"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	pg *postgres.Client
}

// NewHealthHandler creates the health handler
func NewHealthHandler(pg *postgres.Client) *HealthHandler {
	return &HealthHandler{pg: pg}
}

// Health liveness probe
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready readiness probe, checks the database connection
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.pg.DB().PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
