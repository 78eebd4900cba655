package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}

		// Don't override if already set
		if existing := string(c.Response().Header.Peek(fiber.HeaderCacheControl)); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		// Selection state changes with every pointer event.
		case path == "/v1/selection", path == "/v1/readout", path == "/v1/composition", path == "/v1/value":
			ttl = "no-store"

		case strings.HasPrefix(path, "/v1/tiles/"):
			ttl = "public, max-age=86400"

		case strings.HasSuffix(path, "/assets"), path == "/v1/datasets":
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/landmarks"):
			ttl = "public, max-age=3600"

		case strings.HasSuffix(path, "/rows"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
