package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"

	healthPingTimeout = 2 * time.Second
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	if h.opts.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.opts.DB.PingContext(ctx); err != nil {
			if h.log != nil {
				h.log.Errorw("health_db_ping_failed", "err", err)
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": statusDegraded, "db": "unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
