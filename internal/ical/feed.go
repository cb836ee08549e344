// Package ical выгружает события календаря в формате iCalendar (RFC 5545).
package ical

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Leganyst/studio-calendar/internal/model"
)

const (
	productID = "-//studio-calendar//calendar feed//EN"

	// «Плавающее» время: без Z и TZID, клиент показывает его как есть.
	floatingLayout = "20060102T150405"
)

// Export собирает VCALENDAR с одним VEVENT на событие.
// Свободные слоты отдаются как TENTATIVE/TRANSPARENT, остальное — CONFIRMED/OPAQUE.
func Export(name string, events []model.CalendarEvent, stamp time.Time) string {
	cal := ics.NewCalendarFor(productID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
		cal.SetName(name)
	}

	for i := range events {
		addEvent(cal, &events[i], stamp)
	}
	// RFC 5545 требует CRLF независимо от ОС
	return cal.Serialize(ics.WithNewLineWindows)
}

func addEvent(cal *ics.Calendar, ev *model.CalendarEvent, stamp time.Time) {
	ve := cal.AddEvent(fmt.Sprintf("%s@studio-calendar", ev.ID))
	ve.SetDtStampTime(stamp)

	if ev.AllDay {
		ve.SetAllDayStartAt(ev.StartAt.Time)
		// DTEND для целого дня не включается
		end := ev.EndAt.Time
		if end.Hour() != 0 || end.Minute() != 0 || end.Second() != 0 || !end.After(ev.StartAt.Time) {
			end = time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, time.UTC)
		}
		ve.SetAllDayEndAt(end)
	} else {
		ve.SetProperty(ics.ComponentPropertyDtStart, ev.StartAt.Format(floatingLayout))
		ve.SetProperty(ics.ComponentPropertyDtEnd, ev.EndAt.Format(floatingLayout))
	}

	ve.SetSummary(summary(ev))
	if ev.Description != nil && *ev.Description != "" {
		ve.SetDescription(*ev.Description)
	}
	if ev.Location != nil && *ev.Location != "" {
		ve.SetLocation(*ev.Location)
	}
	if ev.Color != nil && *ev.Color != "" {
		ve.SetColor(*ev.Color)
	}
	ve.AddCategory(string(ev.EventType))

	if ev.IsAvailableSlot && !ev.IsBooked {
		ve.SetStatus(ics.ObjectStatusTentative)
		ve.SetTimeTransparency(ics.TransparencyTransparent)
	} else {
		ve.SetStatus(ics.ObjectStatusConfirmed)
		ve.SetTimeTransparency(ics.TransparencyOpaque)
	}
}

func summary(ev *model.CalendarEvent) string {
	if ev.Project != nil && ev.Project.Title != "" {
		return fmt.Sprintf("%s (%s)", ev.Title, ev.Project.Title)
	}
	return ev.Title
}
