package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned from a handler as {"error": msg}.
// Server-side failures are logged and sent to Sentry when a hub is attached.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Error: fe.Message})
	}

	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		requestID, _ := c.Locals("requestid").(string)
		slog.Error("request failed",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: apperror.Message(err)})
}

func parseJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("", "Invalid request body")
	}
	return nil
}
