package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/selene/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Pointer events arrive at mouse-move rate, so the limit is generous.
	app.Use(limiter.New(limiter.Config{
		Max:        1200,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(deprecatedRoutes))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Catalogue
	v1.Get("/datasets", timeout.NewWithContext(ListDatasetsHandler(deps), requestTimeout))
	v1.Get("/datasets/:name/assets", DatasetAssetsHandler(deps))
	v1.Get("/datasets/:name/rows", timeout.NewWithContext(DatasetRowsHandler(deps), requestTimeout))
	v1.Get("/tiles/:layer/:z/:x/:row", TileHandler(deps))
	v1.Get("/landmarks", ListLandmarksHandler(deps))
	v1.Get("/landmarks.geojson", LandmarksGeoJSONHandler(deps))

	// Selection state
	v1.Get("/selection", GetSelectionHandler(deps))
	v1.Put("/selection", SelectDatasetHandler(deps))
	v1.Put("/opacity", SetOpacityHandler(deps))
	v1.Put("/view-mode", SetViewModeHandler(deps))
	v1.Get("/composition", GetCompositionHandler(deps))
	v1.Get("/readout", GetReadoutHandler(deps))
	v1.Get("/value", GetValueHandler(deps))

	// Pointer resolution
	v1.Post("/resolve/geo", ResolveGeoHandler(deps))
	v1.Post("/resolve/map", ResolveMapHandler(deps))
	v1.Post("/resolve/tile", ResolveTileHandler(deps))
	v1.Post("/resolve/sphere", ResolveSphereHandler(deps))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS, deps.Selection)))
}
