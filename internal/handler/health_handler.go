package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StreamCounter reports connected stream clients.
type StreamCounter interface {
	ClientCount() int
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	deps    map[string]Pinger
	streams StreamCounter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(deps map[string]Pinger, streams StreamCounter) *HealthHandler {
	return &HealthHandler{deps: deps, streams: streams}
}

// GetHealth responds with service and dependency status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := 200
	deps := gin.H{}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			deps[name] = "disconnected"
			status = "degraded"
			code = 503
			continue
		}
		deps[name] = "connected"
	}

	utils.Success(c, code, "Service is "+status, gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": deps,
		"streams":      h.streams.ClientCount(),
	})
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
