package serverutils

import (
	"github.com/gofiber/fiber/v2"

	"support-chat-be/pkg/apperr"
)

var kindToStatus = map[apperr.Kind]int{
	apperr.KindUnauthorized:      fiber.StatusUnauthorized,
	apperr.KindForbidden:         fiber.StatusForbidden,
	apperr.KindNotFound:          fiber.StatusNotFound,
	apperr.KindInvalidArgument:   fiber.StatusBadRequest,
	apperr.KindInvalidTransition: fiber.StatusConflict,
	apperr.KindRoomClosed:        fiber.StatusConflict,
	apperr.KindConflict:          fiber.StatusConflict,
	apperr.KindInternal:          fiber.StatusInternalServerError,
}

// ErrorHandlerMiddleware converts service errors into structured JSON
// responses keyed by the taxonomy kind. Internals never leak to clients.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(fiber.Map{
				"error":   "HTTP_ERROR",
				"message": fe.Message,
			})
		}

		kind := apperr.KindOf(err)
		status, ok := kindToStatus[kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}

		return ctx.Status(status).JSON(fiber.Map{
			"error":   string(kind),
			"message": apperr.MessageOf(err),
		})
	}
}
