package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/numisbid/auctionhouse/backend/models"
)

// CustomErrorHandler turns unhandled fiber errors into the standard JSON
// envelope instead of plain-text bodies.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= 500 {
		slog.Error("Unhandled request error",
			slog.String("type", "http"),
			slog.String("path", c.Path()),
			slog.Any("error", err))
	}

	return c.Status(code).JSON(models.NewErrorResponse("REQUEST_FAILED", message, nil))
}
