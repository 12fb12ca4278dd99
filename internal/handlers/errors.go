package handlers

import (
	"log/slog"

	"github.com/elawdiya/backend/internal/dto"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// internalError logs err with the request id, reports it to Sentry when a
// hub is attached, and answers 500 with message.
func internalError(c *fiber.Ctx, message string, err error) error {
	slog.Error(message,
		"request_id", requestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("request_id", requestID(c))
			hub.CaptureException(err)
		})
	}
	return errorJSON(c, fiber.StatusInternalServerError, message)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
