package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LocalDateTimeLayout — формат хранения: локальное время студии без смещения.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// Допустимые входные форматы. RFC3339 принимается, но смещение отбрасывается:
// берётся только настенное время.
var localDateTimeInputLayouts = []string{
	LocalDateTimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339Nano,
	time.RFC3339,
}

// LocalDateTime — «наивные» дата и время. Внутри хранится в time.UTC,
// но UTC здесь ничего не значит: часовой пояс не известен и не конвертируется.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime отбрасывает часовой пояс t и секунды меньше единицы.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// ParseLocalDateTime разбирает строку в одном из допустимых форматов.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localDateTimeInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewLocalDateTime(t), nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid local date-time %q", s)
}

func (t LocalDateTime) String() string {
	return t.Format(LocalDateTimeLayout)
}

func (LocalDateTime) GormDataType() string {
	return "varchar(19)"
}

// Value хранит значение строкой фиксированной ширины, поэтому сравнение
// строк в SQL совпадает с хронологическим.
func (t LocalDateTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Format(LocalDateTimeLayout), nil
}

func (t *LocalDateTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = LocalDateTime{}
		return nil
	case string:
		parsed, err := ParseLocalDateTime(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = NewLocalDateTime(v)
		return nil
	default:
		return fmt.Errorf("unsupported local date-time value %T", value)
	}
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(LocalDateTimeLayout))
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = LocalDateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t LocalDateTime) Before(u LocalDateTime) bool {
	return t.Time.Before(u.Time)
}

func (t LocalDateTime) After(u LocalDateTime) bool {
	return t.Time.After(u.Time)
}
