package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

// Show handles GET /healthz. It answers 503 while the visitor store is
// unreachable.
func (h *HealthController) Show(c *ctx.Context) {
	pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(pingCtx); err != nil {
		logger.WithCtx(c.Context()).Warn("health: store unreachable", "error", err)
		c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
