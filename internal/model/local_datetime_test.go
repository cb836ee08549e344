package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalDateTime(t *testing.T) {
	cases := map[string]string{
		"2026-02-02T09:00:00":       "2026-02-02T09:00:00",
		"2026-02-02T09:00":          "2026-02-02T09:00:00",
		"2026-02-02 09:30:15":       "2026-02-02T09:30:15",
		" 2026-02-02 09:30 ":        "2026-02-02T09:30:00",
		"2026-02-02T09:00:00+03:00": "2026-02-02T09:00:00",
		"2026-02-02T09:00:00.5Z":    "2026-02-02T09:00:00",
	}
	for in, want := range cases {
		got, err := ParseLocalDateTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
		assert.Equal(t, time.UTC, got.Location(), in)
	}

	for _, bad := range []string{"", "2026-02-02", "tomorrow", "2026-13-01T00:00:00"} {
		_, err := ParseLocalDateTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestLocalDateTime_ValueAndScan(t *testing.T) {
	ldt, err := ParseLocalDateTime("2026-02-02T09:00:00")
	require.NoError(t, err)

	v, err := ldt.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-02-02T09:00:00", v)

	zero, err := LocalDateTime{}.Value()
	require.NoError(t, err)
	assert.Nil(t, zero)

	var scanned LocalDateTime
	require.NoError(t, scanned.Scan([]byte("2026-02-02T09:00:00")))
	assert.True(t, scanned.Equal(ldt.Time))

	moscow := time.FixedZone("MSK", 3*3600)
	require.NoError(t, scanned.Scan(time.Date(2026, 2, 2, 9, 0, 0, 0, moscow)))
	assert.Equal(t, "2026-02-02T09:00:00", scanned.String())

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	assert.Error(t, scanned.Scan(42))
}

func TestLocalDateTime_JSON(t *testing.T) {
	type payload struct {
		At  LocalDateTime  `json:"at"`
		Opt *LocalDateTime `json:"opt"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2026-02-02T13:00:00","opt":null}`), &p))
	assert.Equal(t, "2026-02-02T13:00:00", p.At.String())
	assert.Nil(t, p.Opt)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2026-02-02T13:00:00","opt":null}`, string(raw))

	assert.Error(t, json.Unmarshal([]byte(`{"at":"soon"}`), &p))
}

func TestLocalDateTime_Ordering(t *testing.T) {
	a, _ := ParseLocalDateTime("2026-02-02T09:00:00")
	b, _ := ParseLocalDateTime("2026-02-02T13:00:00")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))

	// строковое представление сортируется так же, как время
	va, _ := a.Value()
	vb, _ := b.Value()
	assert.Less(t, va.(string), vb.(string))
}

func TestCalendarEvent_OwnerID(t *testing.T) {
	client := uuid.New()
	projectOwner := uuid.New()
	booker := uuid.New()

	ev := CalendarEvent{ClientID: &client, Project: &Project{ClientID: projectOwner}, BookedBy: &booker}
	assert.Equal(t, client, *ev.OwnerID())

	ev.ClientID = nil
	assert.Equal(t, projectOwner, *ev.OwnerID())

	ev.Project = nil
	assert.Equal(t, booker, *ev.OwnerID())

	ev.BookedBy = nil
	assert.Nil(t, ev.OwnerID())
}

func TestCalendarEvent_Committed(t *testing.T) {
	assert.True(t, (&CalendarEvent{}).Committed())
	assert.False(t, (&CalendarEvent{IsAvailableSlot: true}).Committed())
	// забронированный слот остаётся слотом и в проверке конфликтов не участвует
	assert.False(t, (&CalendarEvent{IsAvailableSlot: true, IsBooked: true}).Committed())
	assert.True(t, CalendarEventBlocked.Valid())
	assert.False(t, CalendarEventType("party").Valid())
}
