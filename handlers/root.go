package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RootHandler answers GET / with a short usage line for the schedule routes.
func (h Handlers) RootHandler(c *fiber.Ctx) error {
	h.Logger.Info("RootHandler", zap.String("ip", c.IP()))
	return c.SendString("REA schedule service. Try /schedule?group=<group>")
}
