package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/guildpulse/dashboard/internal/platform/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status":  "ok",
		"uptime":  uptime,
		"version": version.Get(),
	})
}

// handleReadiness checks the session backend when Redis is configured. The
// bot API is deliberately not probed: pages degrade gracefully when it is
// down, so its availability must not gate readiness.
func (s *Server) handleReadiness(c echo.Context) error {
	if s.redisHealth != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := s.redisHealth.Ping(ctx).Err(); err != nil {
			return c.JSON(503, map[string]any{
				"status":       "unhealthy",
				"failed_check": "redis",
				"error":        err.Error(),
			})
		}
	}

	return c.JSON(200, map[string]string{"status": "ready"})
}
