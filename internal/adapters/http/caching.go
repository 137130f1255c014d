package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type cacheRule struct {
	match func(path string) bool
	value string
}

// Ordered; first match wins. GPX exports get the longest TTL because a
// composed route's geometry never changes after creation.
var cacheRules = []cacheRule{
	{func(p string) bool { return p == "/v1/health" || p == "/v1/ready" }, "public, max-age=10"},
	{func(p string) bool { return strings.HasPrefix(p, "/v1/segments/nearby") }, "public, max-age=300"},
	{func(p string) bool { return strings.HasSuffix(p, "/gpx") }, "public, max-age=3600"},
	{func(p string) bool {
		return strings.HasPrefix(p, "/v1/tracks/") ||
			strings.HasPrefix(p, "/v1/segments/") ||
			strings.HasPrefix(p, "/v1/routes/")
	}, "public, max-age=600"},
	{func(p string) bool { return p == "/v1/stats" }, "public, max-age=60"},
	{func(p string) bool { return strings.HasPrefix(p, "/v1/") }, "public, max-age=300"},
}

// cacheControl sets a default Cache-Control on GET responses. Handlers that
// set their own header win.
func cacheControl() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}

		path := c.Path()
		for _, r := range cacheRules {
			if r.match(path) {
				c.Set(fiber.HeaderCacheControl, r.value)
				break
			}
		}
		return err
	}
}
