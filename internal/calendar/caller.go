package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leganyst/studio-calendar/internal/model"
)

// Caller — проверенный пользователь, от имени которого выполняется операция.
type Caller struct {
	UserID uuid.UUID
	Name   string
	Role   model.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// Restricted — вызывающий видит только свои проекты и свободные слоты.
func (c Caller) Restricted() bool {
	return !c.IsAdmin()
}

// Источник данных о пользователях.
// В реале это репозиторий поверх БД, в тестах — мок.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ValidateCaller:
//   - проверяет корректность идентификатора;
//   - вытаскивает пользователя из хранилища;
//   - проверяет, что учётная запись активна и роль известна;
//   - возвращает Caller или ошибку, оборачивающую ErrUnauthorized.
func ValidateCaller(
	ctx context.Context,
	store UserStore,
	userID uuid.UUID,
) (*Caller, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrUnauthorized)
	}

	u, err := store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
	}

	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", ErrUnauthorized)
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUnauthorized, u.Role)
	}

	return &Caller{
		UserID: u.ID,
		Name:   u.DisplayName(),
		Role:   u.Role,
	}, nil
}

// RequireAdmin возвращает ErrForbidden для всех, кроме администратора.
func RequireAdmin(c Caller) error {
	if !c.IsAdmin() {
		return fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	return nil
}
