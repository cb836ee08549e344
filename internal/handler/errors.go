package handler

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/Leganyst/studio-calendar/internal/calendar"
)

var errorStatuses = []struct {
	kind   error
	status int
}{
	{calendar.ErrValidation, fiber.StatusBadRequest},
	{calendar.ErrUnauthorized, fiber.StatusUnauthorized},
	{calendar.ErrForbidden, fiber.StatusForbidden},
	{calendar.ErrNotFound, fiber.StatusNotFound},
	{calendar.ErrConflict, fiber.StatusConflict},
	{calendar.ErrAlreadyBooked, fiber.StatusConflict},
}

// ErrorHandler — общий обработчик fiber: ошибки middleware и хендлеров
// приходят сюда и превращаются в {"error": "..."}.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		status, message := classify(err)
		if status == fiber.StatusInternalServerError {
			log.ErrorContext(c.UserContext(), "request failed",
				"method", c.Method(), "path", c.Path(), "request_id", c.Locals("requestid"), "err", err)
		}
		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}

// classify сопоставляет ошибку движка со статусом и текстом для клиента.
// Подробности внутренних ошибок наружу не отдаются.
func classify(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.kind) {
			return e.status, publicMessage(err, e.kind)
		}
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// publicMessage оставляет уточнение после вида ошибки:
// "book slot: not found: slot not found" -> "Slot not found".
func publicMessage(err, kind error) string {
	msg := err.Error()
	prefix := kind.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		msg = msg[i+len(prefix):]
	} else if i := strings.Index(msg, kind.Error()); i >= 0 {
		msg = msg[i:]
	}
	return capitalize(msg)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
