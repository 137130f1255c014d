package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// requestLog emits one structured line per request. Client errors log at
// warn, server errors and handler failures at error.
func requestLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		logger := LoggerFromCtx(c.UserContext())
		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", len(c.Response().Body()),
		}
		if err != nil {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case err != nil || status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}
