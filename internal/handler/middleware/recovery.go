package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Recovery recovers from handler panics and returns a 500
func Recovery(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Path()),
					zap.ByteString("stack", debug.Stack()),
				)

				if err := c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
				}); err != nil {
					logger.Error("failed to send panic response", zap.Error(err))
				}
			}
		}()

		return c.Next()
	}
}
