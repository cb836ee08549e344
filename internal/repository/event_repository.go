package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
)

// EventFilter — условия выборки событий календаря.
type EventFilter struct {
	// Диапазон по дате начала события, обе границы включительно.
	FromDate *time.Time
	ToDate   *time.Time

	EventType model.CalendarEventType
	ProjectID *uuid.UUID

	// Если задан, видны только события проектов пользователя,
	// события с его client_id и любые слоты для бронирования.
	ScopeUserID *uuid.UUID
}

type EventRepository interface {
	// Найти событие по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CalendarEvent, error)
	// Занятые события (не слоты), пересекающие [from, to).
	ListCommittedInRange(ctx context.Context, from, to model.LocalDateTime) ([]model.CalendarEvent, error)
	// События по фильтру, по возрастанию начала.
	List(ctx context.Context, filter EventFilter) ([]model.CalendarEvent, error)
	// Свободные слоты, целиком лежащие в [from, to].
	ListAvailable(ctx context.Context, from, to model.LocalDateTime) ([]model.CalendarEvent, error)
	// Занятые события и забронированные слоты, начинающиеся в [from, to).
	ListScheduledStarting(ctx context.Context, from, to model.LocalDateTime) ([]model.CalendarEvent, error)
	// Только занятые события (без слотов), начинающиеся в [from, to).
	ListCommittedStarting(ctx context.Context, from, to model.LocalDateTime) ([]model.CalendarEvent, error)
	// Создать событие.
	Create(ctx context.Context, event *model.CalendarEvent) error
	// Сохранить редактируемые поля события.
	Update(ctx context.Context, event *model.CalendarEvent) error
	// Удалить событие.
	Delete(ctx context.Context, id uuid.UUID) error
	// Забронировать слот, если он всё ещё свободен. false — слот уже занят или исчез.
	BookIfAvailable(ctx context.Context, id, bookedBy uuid.UUID, projectID *uuid.UUID) (bool, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CalendarEvent, error) {
	var ev model.CalendarEvent
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Client").
		First(&ev, "id = ?", id).Error
	if err != nil {
		return nil, wrapNotFound(err, "event")
	}
	return &ev, nil
}

func (r *GormEventRepository) ListCommittedInRange(
	ctx context.Context,
	from, to model.LocalDateTime,
) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	err := r.db.WithContext(ctx).
		Model(&model.CalendarEvent{}).
		Where("is_available_slot = ?", false).
		Where("start_datetime < ? AND end_datetime > ?", to, from).
		Order("start_datetime ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormEventRepository) List(ctx context.Context, f EventFilter) ([]model.CalendarEvent, error) {
	q := r.db.WithContext(ctx).
		Model(&model.CalendarEvent{}).
		Joins("LEFT JOIN projects ON projects.id = calendar_events.project_id").
		Preload("Project").
		Preload("Client")

	if f.FromDate != nil {
		q = q.Where("calendar_events.start_datetime >= ?", dayStart(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("calendar_events.start_datetime < ?", dayStart(f.ToDate.AddDate(0, 0, 1)))
	}
	if f.EventType != "" {
		q = q.Where("calendar_events.event_type = ?", f.EventType)
	}
	if f.ProjectID != nil {
		q = q.Where("calendar_events.project_id = ?", *f.ProjectID)
	}
	if f.ScopeUserID != nil {
		q = q.Where(
			"(projects.client_id = ? OR calendar_events.client_id = ? OR calendar_events.is_available_slot = ?)",
			*f.ScopeUserID, *f.ScopeUserID, true,
		)
	}

	var events []model.CalendarEvent
	err := q.Order("calendar_events.start_datetime ASC").
		Order("calendar_events.id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormEventRepository) ListAvailable(
	ctx context.Context,
	from, to model.LocalDateTime,
) ([]model.CalendarEvent, error) {
	var slots []model.CalendarEvent
	err := r.db.WithContext(ctx).
		Model(&model.CalendarEvent{}).
		Where("is_available_slot = ? AND is_booked = ?", true, false).
		Where("start_datetime >= ? AND end_datetime <= ?", from, to).
		Order("start_datetime ASC").
		Order("id ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormEventRepository) ListScheduledStarting(
	ctx context.Context,
	from, to model.LocalDateTime,
) ([]model.CalendarEvent, error) {
	return r.listStarting(ctx, from, to,
		r.db.Where("is_available_slot = ?", false).Or("is_booked = ?", true))
}

func (r *GormEventRepository) ListCommittedStarting(
	ctx context.Context,
	from, to model.LocalDateTime,
) ([]model.CalendarEvent, error) {
	return r.listStarting(ctx, from, to, r.db.Where("is_available_slot = ?", false))
}

// listStarting — события, начинающиеся в [from, to) и подходящие под kind.
func (r *GormEventRepository) listStarting(
	ctx context.Context,
	from, to model.LocalDateTime,
	kind *gorm.DB,
) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	err := r.db.WithContext(ctx).
		Model(&model.CalendarEvent{}).
		Preload("Project").
		Where(kind).
		Where("start_datetime >= ? AND start_datetime < ?", from, to).
		Order("start_datetime ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormEventRepository) Create(ctx context.Context, event *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Omit("Project", "Client", "Schedule").Create(event).Error
}

func (r *GormEventRepository) Update(ctx context.Context, event *model.CalendarEvent) error {
	updates := map[string]any{
		"title":             event.Title,
		"description":       event.Description,
		"event_type":        event.EventType,
		"start_datetime":    event.StartAt,
		"end_datetime":      event.EndAt,
		"location":          event.Location,
		"color":             event.Color,
		"is_available_slot": event.IsAvailableSlot,
		"all_day":           event.AllDay,
		"client_id":         event.ClientID,
		"project_id":        event.ProjectID,
	}
	res := r.db.WithContext(ctx).
		Model(&model.CalendarEvent{}).
		Where("id = ?", event.ID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: event not found", calendar.ErrNotFound)
	}
	return nil
}

func (r *GormEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.CalendarEvent{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: event not found", calendar.ErrNotFound)
	}
	return nil
}

// BookIfAvailable — compare-and-set одним UPDATE: из двух параллельных
// бронирований строку изменит только одно.
func (r *GormEventRepository) BookIfAvailable(
	ctx context.Context,
	id, bookedBy uuid.UUID,
	projectID *uuid.UUID,
) (bool, error) {
	updates := map[string]any{
		"is_booked": true,
		"booked_by": bookedBy,
	}
	// project_id только выставляется, но никогда не очищается.
	if projectID != nil {
		updates["project_id"] = *projectID
	}

	res := r.db.WithContext(ctx).
		Model(&model.CalendarEvent{}).
		Where("id = ? AND is_available_slot = ? AND is_booked = ?", id, true, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func dayStart(t time.Time) model.LocalDateTime {
	y, m, d := t.Date()
	return model.NewLocalDateTime(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
