package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/homepower/switchplanner/internal/apperr"
	"go.uber.org/zap"
)

// ErrorHandler maps apperr.Error values (and anything else a handler forgot
// to map itself) to a JSON body, logging only the ones that are genuinely
// our fault.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if appErr, ok := apperr.As(err); ok {
			code = appErr.HTTPStatus()
		} else if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code == fiber.StatusInternalServerError {
			log.Error("internal server error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{"message": err.Error()})
	}
}
