package httpapi

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/i474232898/weather-monitoring/internal/live"
	"github.com/i474232898/weather-monitoring/internal/weather"
)

const serviceName = "weather-monitoring"

// NewApp builds the Fiber app with middleware, health, metrics, the REST API
// and the live websocket endpoint.
func NewApp(service *weather.Service, hub *live.Hub, log *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	RegisterRoutes(app, service)
	if hub != nil {
		registerLive(app, hub, log)
	}
	return app
}

func registerLive(app *fiber.App, hub *live.Hub, log *zap.SugaredLogger) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		events, cancel := hub.Subscribe()
		defer cancel()
		log.Debugw("live client connected", "remote", conn.RemoteAddr().String())

		// Reader: detect client disconnects.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(ev); err != nil {
					log.Debugw("live client write failed", "error", err)
					return
				}
			case <-closed:
				log.Debugw("live client disconnected", "remote", conn.RemoteAddr().String())
				return
			}
		}
	}))
}
