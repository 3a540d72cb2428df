package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bookstore_api/internal/utils"
)

var startTime = time.Now()

// Pinger is anything with a connectivity check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
	carrier interface{ ValidateConfig() error }
	db      Pinger
	cache   Pinger
}

// NewHealthHandler creates a new HealthHandler. db and cache may be nil.
func NewHealthHandler(carrier interface{ ValidateConfig() error }, db, cache Pinger) *HealthHandler {
	return &HealthHandler{carrier: carrier, db: db, cache: cache}
}

// GetHealth responds with service, carrier configuration and backing store status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	carrier := gin.H{"status": "configured"}
	if err := h.carrier.ValidateConfig(); err != nil {
		carrier = gin.H{"status": "unconfigured", "error": err.Error()}
	}

	utils.Success(c, 200, "Service is healthy", gin.H{
		"status":    "healthy",
		"version":   "1.0.0",
		"uptime":    int(time.Since(startTime).Seconds()),
		"timestamp": utils.NowISO(),
		"ghn":       carrier,
		"database":  pingStatus(ctx, h.db),
		"cache":     pingStatus(ctx, h.cache),
	})
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.PingContext(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}
