package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/repository"
	"github.com/Leganyst/studio-calendar/internal/testdb"
)

func TestSink_NotifySlotBooked(t *testing.T) {
	gdb := testdb.Open(t)
	admin := testdb.CreateUser(t, gdb, model.RoleAdmin, "owner")
	client := testdb.CreateUser(t, gdb, model.RoleClient, "Jane")
	slot := testdb.CreateEvent(t, gdb, "Available for Booking", "2026-02-02T09:00:00", "2026-02-02T13:00:00", true)

	notifications := repository.NewGormNotificationRepository(gdb)
	sink := NewSink(repository.NewGormUserRepository(gdb), notifications, nil)

	booker := calendar.Caller{UserID: client.ID, Name: "Jane", Role: model.RoleClient}
	require.NoError(t, sink.NotifySlotBooked(context.Background(), booker, slot))

	items, err := notifications.ListByUser(context.Background(), admin.ID, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	n := items[0]
	assert.Equal(t, model.NotificationSlotBooked, n.Type)
	assert.Equal(t, "Time Slot Booked", n.Title)
	assert.Equal(t, "Jane booked a time slot for Monday, 02 Feb 2026, 09:00-13:00", n.Message)
	require.NotNil(t, n.Link)
	assert.Equal(t, "/calendar", *n.Link)
	assert.False(t, n.IsRead)
}

func TestSink_AnonymousBooker(t *testing.T) {
	gdb := testdb.Open(t)
	admin := testdb.CreateUser(t, gdb, model.RoleAdmin, "owner")
	client := testdb.CreateUser(t, gdb, model.RoleClient, "x")
	slot := testdb.CreateEvent(t, gdb, "Available for Booking", "2026-02-03T13:00:00", "2026-02-03T17:00:00", true)

	notifications := repository.NewGormNotificationRepository(gdb)
	sink := NewSink(repository.NewGormUserRepository(gdb), notifications, nil)

	require.NoError(t, sink.NotifySlotBooked(context.Background(), calendar.Caller{UserID: client.ID}, slot))

	items, err := notifications.ListByUser(context.Background(), admin.ID, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A client booked a time slot for Tuesday, 03 Feb 2026, 13:00-17:00", items[0].Message)
}

func TestSink_NoAdmin(t *testing.T) {
	gdb := testdb.Open(t)
	client := testdb.CreateUser(t, gdb, model.RoleClient, "jane")
	slot := testdb.CreateEvent(t, gdb, "Available for Booking", "2026-02-02T09:00:00", "2026-02-02T13:00:00", true)

	sink := NewSink(repository.NewGormUserRepository(gdb), repository.NewGormNotificationRepository(gdb), nil)

	err := sink.NotifySlotBooked(context.Background(), calendar.Caller{UserID: client.ID, Name: "jane"}, slot)
	assert.ErrorIs(t, err, calendar.ErrNotFound)
}
