package handlers

import (
	"errors"

	"githubPushRelay/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewApp builds the fiber app with JSON errors, panic recovery, request
// logging and every route mounted.
func NewApp(h *HTTP, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "github-push-relay",
		BodyLimit:             bodyLimit,
		ErrorHandler:          ErrorHandler(h.lg),
		DisableStartupMessage: true,
	})
	app.Use(middleware.RequestLogger(h.lg))
	app.Use(recover.New())
	h.Routes(app)
	return app
}

// ErrorHandler renders every error as {"error": message}. Unknown errors are
// logged and reported as 500 without detail.
func ErrorHandler(lg *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			lg.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
