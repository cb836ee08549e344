package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
)

// Ключ Locals, под которым лежит *calendar.Caller.
const callerKey = "caller"

// Authenticator превращает bearer-токен в проверенного пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*calendar.Caller, error)
}

// AuthMiddleware требует заголовок "Authorization: Bearer <token>".
// Ошибки отдаются в общий ErrorHandler приложения.
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return fmt.Errorf("%w: access token required", calendar.ErrUnauthorized)
		}

		caller, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(callerKey, caller)
		return c.Next()
	}
}

// OnlyRoles пропускает только перечисленные роли.
func OnlyRoles(message string, roles ...model.Role) fiber.Handler {
	if message == "" {
		message = "insufficient permissions"
	}
	return func(c *fiber.Ctx) error {
		caller, ok := CallerFrom(c)
		if !ok {
			return fmt.Errorf("%w: authentication required", calendar.ErrUnauthorized)
		}
		for _, r := range roles {
			if caller.Role == r {
				return c.Next()
			}
		}
		return fmt.Errorf("%w: %s", calendar.ErrForbidden, message)
	}
}

// AdminOnly — сокращение для маршрутов администратора.
func AdminOnly() fiber.Handler {
	return OnlyRoles("admin access required", model.RoleAdmin)
}

// CallerFrom достаёт пользователя, положенного AuthMiddleware.
func CallerFrom(c *fiber.Ctx) (calendar.Caller, bool) {
	caller, ok := c.Locals(callerKey).(*calendar.Caller)
	if !ok || caller == nil {
		return calendar.Caller{}, false
	}
	return *caller, true
}
