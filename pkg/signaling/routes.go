package signaling

import (
	"slices"
	"time"

	"github.com/MikeDev101/camrelay/pkg/manager"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewApp returns a fiber app serving the relay and its HTTP endpoints.
func (srv *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "camrelay",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadTimeout:           srv.Config.PongWait,
		WriteTimeout:          srv.Config.WriteWait,
	})

	app.Use(recover.New())
	if srv.Config.LogLevel == "debug" {
		app.Use(logger.New())
	}

	srv.Mount(app)
	return app
}

// Mount registers the relay's routes on app.
func (srv *Server) Mount(app *fiber.App) {
	app.Use("/ws", srv.Upgrader)
	app.Get("/ws", websocket.New(srv.Handler, websocket.Config{
		HandshakeTimeout: srv.Config.WriteWait,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}))

	// Cross-origin reads of the JSON endpoints are only opened up when every
	// origin may connect anyway.
	api := app.Group("/")
	if slices.Contains(srv.Config.AllowedOrigins, "*") {
		api.Use(cors.New(cors.Config{AllowMethods: "GET,HEAD,OPTIONS"}))
	}

	api.Get("/sessions", func(c *fiber.Ctx) error {
		return c.JSON(manager.Snapshot(srv.relay()))
	})

	api.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"connections": manager.ConnectionCount(srv.relay()),
			"draining":    srv.Draining.Load(),
			"time":        time.Now().UTC(),
		})
	})

	api.Get("/api/ice-servers", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"iceServers": srv.Config.ICEServers})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(srv.Metrics.Registry, promhttp.HandlerOpts{})))

	if srv.Config.StaticDir != "" {
		app.Static("/", srv.Config.StaticDir)
	}
}
