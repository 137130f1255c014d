package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/imanolz/gravelpass/internal/pkg/metrics"
)

const (
	requestTimeout = 15 * time.Second
	uploadTimeout  = 30 * time.Second
)

func securityHeaders(c *fiber.Ctx) error {
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("X-Frame-Options", "DENY")
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Set("X-API-Version", "1.0.0")
	return c.Next()
}

// SetupRoutes registers the middleware chain and all REST, GraphQL, and
// WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(requestid.New())
	app.Use(withRequestLogger())
	app.Use(requestLog())

	// 120 req/min per IP
	app.Use(limiter.New(limiter.Config{
		Max:          120,
		Expiration:   time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests")
		},
	}))

	app.Use(securityHeaders)
	app.Use(conditionalGET())
	app.Use(cacheControl())

	// probes stay outside the timeout wrapper
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Post("/tracks", timeout.NewWithContext(UploadTrackHandler(deps), uploadTimeout))
	v1.Get("/tracks", timeout.NewWithContext(ListTracksHandler(deps), requestTimeout))
	v1.Get("/tracks/:id", timeout.NewWithContext(GetTrackHandler(deps), requestTimeout))
	v1.Delete("/tracks/:id", timeout.NewWithContext(DeleteTrackHandler(deps), requestTimeout))
	v1.Post("/tracks/:id/segments", timeout.NewWithContext(CutSegmentHandler(deps), requestTimeout))
	v1.Get("/segments/nearby", timeout.NewWithContext(NearbySegmentsHandler(deps), requestTimeout))
	v1.Get("/segments/:id", timeout.NewWithContext(GetSegmentHandler(deps), requestTimeout))
	v1.Post("/routes", timeout.NewWithContext(ComposeRouteHandler(deps), requestTimeout))
	v1.Get("/routes", timeout.NewWithContext(ListRoutesHandler(deps), requestTimeout))
	v1.Get("/routes/:id", timeout.NewWithContext(GetRouteHandler(deps), requestTimeout))
	v1.Get("/routes/:id/gpx", timeout.NewWithContext(ExportRouteGPXHandler(deps), requestTimeout))
	v1.Get("/stats", timeout.NewWithContext(CatalogStatsHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
