// Package handler serves readiness and liveness probes for Kubernetes, load
// balancers, and CI.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler answers health probes. A nil pinger means no dependency check, the
// process itself being up is enough.
type Handler struct {
	db Pinger
}

// NewHandler returns a health Handler. db may be nil.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Register mounts the probe routes on the engine root.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.Live)
	r.GET("/readyz", h.Ready)
}

// Live reports process liveness.
// GET /healthz
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports readiness, including database reachability.
// GET /readyz
func (h *Handler) Ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  "database unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
