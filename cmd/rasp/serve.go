package main

import (
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/quesurifn/rasp-ics/calendar"
	h "github.com/quesurifn/rasp-ics/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the schedule HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Server.Port = servePort
		}
		svc, err := newService(nil, true)
		if err != nil {
			return err
		}
		defer svc.Close()

		app := newApp(h.Handlers{
			Logger:   logger,
			Calendar: calendar.New(logger, cfg.Schedule.Timeout),
			Schedule: svc,
			Renderer: newRenderer(),
			Group:    cfg.Schedule.Group,
			URL:      cfg.Schedule.URL,
		})

		go func() {
			<-cmd.Context().Done()
			logger.Info("serve: shutting down")
			if err := app.Shutdown(); err != nil {
				logger.Error("serve: shutdown", zap.Error(err))
			}
		}()

		logger.Info("serve", zap.String("port", cfg.Server.Port))
		return app.Listen(":" + cfg.Server.Port)
	},
}

func newApp(handlers h.Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
	})
	fiberLogger := fiberzap.New(fiberzap.Config{
		Logger: logger,
	})
	fiberLimiter := limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.IP() == "127.0.0.1"
		},
		Max:        cfg.Server.RateLimit,
		Expiration: cfg.Server.RateWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			if ip := c.Get("x-forwarded-for"); ip != "" {
				return ip
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
	})

	app.Use(fiberLimiter)
	app.Use(fiberLogger)
	handlers.Mount(app)
	return app
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "app server port (default from config)")
}
