package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/service"
)

// EventRequest — тело POST /api/calendar и PUT /api/calendar/:id.
// Отсутствующие поля остаются nil: при обновлении они не меняются.
type EventRequest struct {
	ProjectID *string `json:"project_id" validate:"omitempty,uuid"`
	ClientID  *string `json:"client_id" validate:"omitempty,uuid"`

	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	EventType   *string `json:"event_type" validate:"omitempty,oneof=filming consultation meeting editing delivery other blocked"`

	StartDateTime *string `json:"start_datetime"`
	EndDateTime   *string `json:"end_datetime"`
	StartDate     *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime     *string `json:"start_time"`
	EndDate       *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	EndTime       *string `json:"end_time"`

	Location *string `json:"location" validate:"omitempty,max=255"`
	Color    *string `json:"color" validate:"omitempty,max=16"`

	IsAvailableSlot *bool `json:"is_available_slot"`
	AllDay          *bool `json:"all_day"`
}

func (r EventRequest) toInput() (service.EventInput, error) {
	in := service.EventInput{
		Title:           r.Title,
		Description:     r.Description,
		EventType:       r.EventType,
		StartDateTime:   r.StartDateTime,
		EndDateTime:     r.EndDateTime,
		StartDate:       r.StartDate,
		StartTime:       r.StartTime,
		EndDate:         r.EndDate,
		EndTime:         r.EndTime,
		Location:        r.Location,
		Color:           r.Color,
		IsAvailableSlot: r.IsAvailableSlot,
		AllDay:          r.AllDay,
	}
	var err error
	if in.ProjectID, err = optionalUUID("project_id", r.ProjectID); err != nil {
		return in, err
	}
	if in.ClientID, err = optionalUUID("client_id", r.ClientID); err != nil {
		return in, err
	}
	return in, nil
}

type BookSlotRequest struct {
	ProjectID *string `json:"project_id" validate:"omitempty,uuid"`
}

type GenerateSlotsRequest struct {
	StartDate       string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	SlotDuration    *int     `json:"slot_duration" validate:"omitempty,min=1,max=1440"`
	ExcludeWeekends *bool    `json:"exclude_weekends"`
	ExcludeDates    []string `json:"exclude_dates" validate:"omitempty,dive,datetime=2006-01-02"`
}

func (r GenerateSlotsRequest) toInput() service.GenerateSlotsInput {
	return service.GenerateSlotsInput{
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		SlotDurationMin: r.SlotDuration,
		ExcludeWeekends: r.ExcludeWeekends,
		ExcludeDates:    r.ExcludeDates,
	}
}

// EventResponse повторяет строку списка дашборда: событие плюс название
// проекта, имя клиента и раздельные дата/время.
type EventResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID *uuid.UUID `json:"project_id"`
	ClientID  *uuid.UUID `json:"client_id"`

	Title       string                  `json:"title"`
	Description *string                 `json:"description"`
	EventType   model.CalendarEventType `json:"event_type"`

	StartDateTime model.LocalDateTime `json:"start_datetime"`
	EndDateTime   model.LocalDateTime `json:"end_datetime"`
	StartDate     string              `json:"start_date"`
	StartTime     string              `json:"start_time"`
	EndDate       string              `json:"end_date"`
	EndTime       string              `json:"end_time"`

	Location        *string    `json:"location"`
	AllDay          bool       `json:"all_day"`
	IsAvailableSlot bool       `json:"is_available_slot"`
	IsBooked        bool       `json:"is_booked"`
	BookedBy        *uuid.UUID `json:"booked_by"`
	Color           *string    `json:"color"`

	ProjectTitle *string `json:"project_title"`
	ClientName   *string `json:"client_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toEventResponse(ev *model.CalendarEvent) EventResponse {
	resp := EventResponse{
		ID:              ev.ID,
		ProjectID:       ev.ProjectID,
		ClientID:        ev.ClientID,
		Title:           ev.Title,
		Description:     ev.Description,
		EventType:       ev.EventType,
		StartDateTime:   ev.StartAt,
		EndDateTime:     ev.EndAt,
		StartDate:       ev.StartAt.Format("2006-01-02"),
		StartTime:       ev.StartAt.Format("15:04:05"),
		EndDate:         ev.EndAt.Format("2006-01-02"),
		EndTime:         ev.EndAt.Format("15:04:05"),
		Location:        ev.Location,
		AllDay:          ev.AllDay,
		IsAvailableSlot: ev.IsAvailableSlot,
		IsBooked:        ev.IsBooked,
		BookedBy:        ev.BookedBy,
		Color:           ev.Color,
		CreatedAt:       ev.CreatedAt,
		UpdatedAt:       ev.UpdatedAt,
	}
	if ev.Project != nil {
		title := ev.Project.Title
		resp.ProjectTitle = &title
	}
	switch {
	case ev.Client != nil:
		name := ev.Client.DisplayName()
		resp.ClientName = &name
	case ev.Project != nil && ev.Project.Client != nil:
		name := ev.Project.Client.DisplayName()
		resp.ClientName = &name
	}
	return resp
}

func toEventResponses(events []model.CalendarEvent) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	return out
}

type SlotResponse struct {
	ID    uuid.UUID           `json:"id"`
	Start model.LocalDateTime `json:"start"`
	End   model.LocalDateTime `json:"end"`
}

type PaginationResponse struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
}

func optionalUUID(field string, v *string) (*uuid.UUID, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*v))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", calendar.ErrValidation, field)
	}
	return &id, nil
}

// validationError собирает ошибки validator в одно сообщение ErrValidation.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", calendar.ErrValidation, err)
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		// Сообщение начинается не с имени поля: publicMessage делает
		// заглавной первую букву, а json-имена должны дойти как есть.
		switch {
		case fe.Tag() == "required":
			parts = append(parts, fmt.Sprintf("missing required field %s", fe.Field()))
		case fe.Param() != "":
			parts = append(parts, fmt.Sprintf("invalid %s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("invalid %s: must be %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", calendar.ErrValidation, strings.Join(parts, "; "))
}

// newValidator называет поля в ошибках по json-тегам.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}
