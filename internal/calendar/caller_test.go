package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/Leganyst/studio-calendar/internal/model"
)

type mockUserStore struct {
	user *model.User
	err  error
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return m.user, m.err
}

func TestValidateCaller_Success(t *testing.T) {
	id := uuid.New()
	store := &mockUserStore{
		user: &model.User{ID: id, Email: "jane@example.com", Name: "Jane", Role: model.RoleClient, IsActive: true},
	}

	caller, err := ValidateCaller(context.Background(), store, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.UserID != id || caller.Role != model.RoleClient || caller.Name != "Jane" {
		t.Fatalf("unexpected caller: %+v", caller)
	}
	if !caller.Restricted() || caller.IsAdmin() {
		t.Fatalf("expected client caller to be restricted")
	}
}

func TestValidateCaller_InvalidID(t *testing.T) {
	_, err := ValidateCaller(context.Background(), &mockUserStore{}, uuid.Nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateCaller_UserNotFound(t *testing.T) {
	store := &mockUserStore{err: fmt.Errorf("%w: user", ErrNotFound)}
	_, err := ValidateCaller(context.Background(), store, uuid.New())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateCaller_StoreFailure(t *testing.T) {
	boom := errors.New("db down")
	_, err := ValidateCaller(context.Background(), &mockUserStore{err: boom}, uuid.New())
	if !errors.Is(err, boom) || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}

func TestValidateCaller_UserInactive(t *testing.T) {
	store := &mockUserStore{
		user: &model.User{ID: uuid.New(), Email: "old@example.com", Role: model.RoleClient, IsActive: false},
	}
	_, err := ValidateCaller(context.Background(), store, store.user.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(Caller{Role: model.RoleAdmin}); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
	if err := RequireAdmin(Caller{Role: model.RoleClient}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
