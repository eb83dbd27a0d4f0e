package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const DeliveryHeader = "X-GitHub-Delivery"

// RequestLogger logs one line per request. A handler error is rendered through
// the app's ErrorHandler first so the logged status is the one the client sees.
func RequestLogger(lg *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", latency),
		}
		if id := c.Get(DeliveryHeader); id != "" {
			fields = append(fields, zap.String("delivery_id", id))
		}
		lg.Info("http_request", fields...)
		return nil
	}
}
