package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrSlotDuration = errors.New("slot duration must be positive")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidClock = errors.New("invalid time of day")
)

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// SplitToTimeSlots разбивает интервал на слоты фиксированной длительности
// подряд от начала. "Хвост" меньшей длительности, чем slotDuration, отбрасывается.
func SplitToTimeSlots(tr TimeRange, slotDuration time.Duration) ([]TimeRange, error) {
	if slotDuration <= 0 {
		return nil, ErrSlotDuration
	}

	slots := []TimeRange{}
	for cur := tr.Start; !cur.Add(slotDuration).After(tr.End); cur = cur.Add(slotDuration) {
		slots = append(slots, TimeRange{Start: cur, End: cur.Add(slotDuration)})
	}
	return slots, nil
}

// HasOverlap проверяет, пересекается ли newRange хотя бы с одним из existing.
func HasOverlap(newRange TimeRange, existing []TimeRange) bool {
	for _, tr := range existing {
		if Overlaps(newRange, tr) {
			return true
		}
	}
	return false
}

// Overlaps — полуоткрытое пересечение: касание концами конфликтом не считается.
// [a.Start, a.End) и [b.Start, b.End) пересекаются, если a.Start < b.End && b.Start < a.End.
func Overlaps(a, b TimeRange) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// ===== Даты и время суток без часового пояса =====

// ParseDate разбирает дату YYYY-MM-DD. Результат — полночь в time.UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseClock разбирает время суток HH:MM (допускаются и секунды) и возвращает
// смещение от полуночи.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrInvalidClock, s)
}

// AtClock возвращает дату day в момент clock от полуночи.
func AtClock(day time.Time, clock time.Duration) time.Time {
	return dateOnly(day).Add(clock)
}

// EachDay возвращает календарные дни от from до to включительно.
// Если to раньше from, результат пустой.
func EachDay(from, to time.Time) []time.Time {
	from, to = dateOnly(from), dateOnly(to)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DaysBetween считает число календарных дней в диапазоне включительно.
func DaysBetween(from, to time.Time) int {
	from, to = dateOnly(from), dateOnly(to)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateKey возвращает ключ дня YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ===== Форматирование слота для пользователя =====

// FormatSlotForUser форматирует интервал в человекочитаемую строку
// вида "Monday, 02 Feb 2026, 09:00-13:00".
// Если includeID = true, в конце добавляется идентификатор слота в скобках.
func FormatSlotForUser(
	tr TimeRange,
	includeID bool,
	slotID string,
) string {
	base := fmt.Sprintf("%s, %s, %s-%s",
		tr.Start.Weekday(),
		tr.Start.Format("02 Jan 2006"),
		tr.Start.Format(ClockLayout),
		tr.End.Format(ClockLayout),
	)

	if includeID && slotID != "" {
		return fmt.Sprintf("%s (ID: %s)", base, slotID)
	}

	return base
}
