package ical

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/studio-calendar/internal/model"
)

func mustLocal(t *testing.T, s string) model.LocalDateTime {
	t.Helper()
	v, err := model.ParseLocalDateTime(s)
	require.NoError(t, err)
	return v
}

func TestExport(t *testing.T) {
	location := "Chapel"
	events := []model.CalendarEvent{
		{
			ID:        uuid.New(),
			Title:     "Ceremony",
			EventType: model.CalendarEventFilming,
			StartAt:   mustLocal(t, "2026-02-02T10:00:00"),
			EndAt:     mustLocal(t, "2026-02-02T12:00:00"),
			Location:  &location,
			Project:   &model.Project{Title: "Jane wedding"},
		},
		{
			ID:              uuid.New(),
			Title:           "Available for Booking",
			EventType:       model.CalendarEventFilming,
			StartAt:         mustLocal(t, "2026-02-03T09:00:00"),
			EndAt:           mustLocal(t, "2026-02-03T13:00:00"),
			IsAvailableSlot: true,
		},
		{
			ID:        uuid.New(),
			Title:     "Closed",
			EventType: model.CalendarEventBlocked,
			StartAt:   mustLocal(t, "2026-02-04T00:00:00"),
			EndAt:     mustLocal(t, "2026-02-04T23:59:00"),
			AllDay:    true,
		},
	}

	out := Export("Northlight Films", events, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "X-WR-CALNAME:Northlight Films")
	assert.Contains(t, out, "DTSTART:20260202T100000\r\n")
	assert.Contains(t, out, "DTEND:20260202T120000\r\n")
	assert.NotContains(t, out, "20260202T100000Z")
	assert.Contains(t, out, "SUMMARY:Ceremony (Jane wedding)")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20260204")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20260205")

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 3)

	slot := parsed[1]
	assert.Equal(t, events[1].ID.String()+"@studio-calendar", slot.Id())
	assert.Equal(t, string(ics.ObjectStatusTentative), slot.GetProperty(ics.ComponentPropertyStatus).Value)
	assert.Equal(t, "Chapel", parsed[0].GetProperty(ics.ComponentPropertyLocation).Value)
	assert.Equal(t, "blocked", parsed[2].GetProperty(ics.ComponentPropertyCategories).Value)
}

func TestExport_Empty(t *testing.T) {
	out := Export("", nil, time.Now())

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
