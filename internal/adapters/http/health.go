package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	processStart = time.Now()

	errNotConfigured = errors.New("not configured")
	errDisconnected  = errors.New("disconnected")
)

// HealthHandler is the liveness probe: the process is up.
func HealthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"uptime": time.Since(processStart).String(),
		})
	}
}

// ReadyHandler is the readiness probe. Postgres is required; NATS and the
// cache degrade the report but the API can serve reads without them.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	type probe struct {
		name     string
		required bool
		run      func(ctx context.Context) error
	}

	probes := []probe{
		{name: "database", required: true, run: func(ctx context.Context) error {
			if deps.DB == nil {
				return errNotConfigured
			}
			return deps.DB.Pool.Ping(ctx)
		}},
		{name: "nats", run: func(ctx context.Context) error {
			if deps.NATS == nil {
				return errNotConfigured
			}
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}},
		{name: "cache", run: func(ctx context.Context) error {
			if deps.Cache == nil {
				return errNotConfigured
			}
			_, err := deps.Cache.Get(ctx, "__readyz__")
			if err != nil && err.Error() != "valkey nil message" {
				return err
			}
			// a missing key still proves the round trip
			return nil
		}},
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string, len(probes))
		ready := true
		for _, p := range probes {
			if err := p.run(ctx); err != nil {
				checks[p.name] = err.Error()
				if p.required {
					ready = false
				}
				continue
			}
			checks[p.name] = "ok"
		}

		code := fiber.StatusOK
		status := "ready"
		if !ready {
			code = fiber.StatusServiceUnavailable
			status = "not ready"
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "checks": checks})
	}
}
