package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/isstrack/internal/pkg/metrics"
)

// requestTimeout bounds every REST handler.
const requestTimeout = 10 * time.Second

// NewApp creates a Fiber app with the shared error handler. Zero timeouts
// mean no limit.
func NewApp(name string, readTimeout, writeTimeout time.Duration) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
		BodyLimit:             1024 * 1024, // 1 MB max request body
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		IdleTimeout:           60 * time.Second,
	})
}

// useCommon installs the middleware shared by both services.
func useCommon(app *fiber.App, rateLimit int) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per IP
	app.Use(limiter.New(limiter.Config{
		Max:        rateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
		Next: func(c *fiber.Ctx) bool {
			return quietPath(c.Path())
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

	// Cache-Control + ETag
	app.Use(CachingMiddleware())
}

// SetupRoutes registers the tracker's REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// A viewer polls every few seconds; allow several per client.
	useCommon(app, 600)

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	apiGroup := app.Group("/api")
	apiGroup.Get("/positions", timeout.NewWithContext(PositionsHandler(deps), requestTimeout))
	apiGroup.Get("/latest", timeout.NewWithContext(LatestHandler(deps), requestTimeout))
	apiGroup.Get("/status", timeout.NewWithContext(StatusHandler(deps), requestTimeout))
	apiGroup.Get("/trail", timeout.NewWithContext(TrailHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket relay needs NATS
	if deps.NATS == nil {
		return
	}
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

// SetupViewerRoutes registers the viewer's scene, status and view-control routes.
func SetupViewerRoutes(app *fiber.App, deps *Dependencies) {
	useCommon(app, 240)

	app.Get("/v1/health", HealthHandler(deps))

	v := app.Group("/viewer")
	v.Get("/scene", timeout.NewWithContext(SceneHandler(deps), requestTimeout))
	v.Get("/status", timeout.NewWithContext(ViewerStatusHandler(deps), requestTimeout))
	v.Post("/view/reset", ResetViewHandler(deps))
	v.Post("/view/terrain", ToggleTerrainHandler(deps))
	v.Put("/view/zoom", ZoomHandler(deps))
}
