package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bitbetty/internal/oracle"
	"bitbetty/internal/queue"
)

// healthReporter is implemented by every price oracle.
type healthReporter interface {
	Health() oracle.HealthStatus
}

type HealthHandler struct {
	DB     *gorm.DB
	Queue  queue.Queue
	Oracle oracle.PriceOracle
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// @Summary Health check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Readiness check
// @Description Requires the store and the queue; oracle health is reported but does not gate readiness.
// @Tags health
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_missing"})
		return
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unreachable"})
		return
	}
	resp := gin.H{"status": "ready"}
	if h.Queue != nil {
		depth, err := h.Queue.Depth(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "queue_unreachable"})
			return
		}
		resp["queue_depth"] = depth
	}
	if hr, ok := h.Oracle.(healthReporter); ok {
		resp["oracle"] = hr.Health()
	}
	c.JSON(http.StatusOK, resp)
}
