package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/repository"
	"github.com/Leganyst/studio-calendar/internal/testdb"
)

const testSecret = "test-secret"

func TestIdentityService_RoundTrip(t *testing.T) {
	gdb := testdb.Open(t)
	admin := testdb.CreateUser(t, gdb, model.RoleAdmin, "owner")
	svc := NewIdentityService(repository.NewGormUserRepository(gdb), testSecret, time.Hour)

	token, err := svc.IssueToken(admin)
	require.NoError(t, err)

	caller, err := svc.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, caller.UserID)
	assert.True(t, caller.IsAdmin())
	assert.Equal(t, "owner", caller.Name)
}

func TestIdentityService_RoleComesFromDatabase(t *testing.T) {
	gdb := testdb.Open(t)
	user := testdb.CreateUser(t, gdb, model.RoleClient, "jane")
	svc := NewIdentityService(repository.NewGormUserRepository(gdb), testSecret, time.Hour)

	// токен с ролью admin не повышает права клиента
	forged := *user
	forged.Role = model.RoleAdmin
	token, err := svc.IssueToken(&forged)
	require.NoError(t, err)

	caller, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, caller.Role)
}

func TestIdentityService_Rejects(t *testing.T) {
	gdb := testdb.Open(t)
	users := repository.NewGormUserRepository(gdb)
	active := testdb.CreateUser(t, gdb, model.RoleClient, "jane")
	inactive := testdb.CreateUser(t, gdb, model.RoleClient, "gone")
	require.NoError(t, gdb.Model(inactive).Update("is_active", false).Error)

	svc := NewIdentityService(users, testSecret, time.Hour)
	ctx := context.Background()

	expiredSvc := NewIdentityService(users, testSecret, time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.IssueToken(active)
	require.NoError(t, err)

	otherSecret, err := NewIdentityService(users, "another-secret", time.Hour).IssueToken(active)
	require.NoError(t, err)

	deactivated, err := svc.IssueToken(inactive)
	require.NoError(t, err)

	unknown, err := svc.IssueToken(&model.User{ID: uuid.New(), Role: model.RoleClient})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{UserID: active.ID.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"expired":       expired,
		"wrong secret":  otherSecret,
		"inactive user": deactivated,
		"unknown user":  unknown,
		"alg none":      none,
	}
	for name, token := range cases {
		_, err := svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, calendar.ErrUnauthorized, name)
	}
}
