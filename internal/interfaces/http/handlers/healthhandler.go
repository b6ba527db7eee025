package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/version"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checkers []HealthChecker
	timeout  time.Duration
	logger   logger.Interface
}

func NewHealthHandler(logger logger.Interface, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		timeout:  2 * time.Second,
		logger:   logger,
	}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for _, checker := range h.checkers {
		if err := checker.Ping(ctx); err != nil {
			h.logger.Warnw("health check failed", "dependency", checker.Name(), "error", err)
			checks[checker.Name()] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[checker.Name()] = "healthy"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":  overall,
		"service": "postforge",
		"version": version.String(),
		"checks":  checks,
	})
}
