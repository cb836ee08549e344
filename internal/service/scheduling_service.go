package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/config"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/repository"
	"github.com/Leganyst/studio-calendar/internal/utils"
)

const (
	AvailableSlotTitle = "Available for Booking"

	defaultStartClock = "09:00"
	defaultEndClock   = "17:00"

	availableSlotsWindow = 30 * 24 * time.Hour
)

// Notifier получает сообщение о бронировании после фиксации в БД.
// Ошибка только логируется: бронирование уже состоялось.
type Notifier interface {
	NotifySlotBooked(ctx context.Context, booker calendar.Caller, slot *model.CalendarEvent) error
}

// SchedulingService — движок календаря: генерация слотов, проверка конфликтов,
// атомарное бронирование и CRUD событий администратором.
type SchedulingService struct {
	events    repository.EventRepository
	projects  repository.ProjectRepository
	users     calendar.UserStore
	schedules repository.ScheduleRepository
	audit     repository.AuditRepository
	notifier  Notifier
	profile   *config.StudioProfile
	log       *slog.Logger

	now func() time.Time
}

func NewSchedulingService(
	events repository.EventRepository,
	projects repository.ProjectRepository,
	users calendar.UserStore,
	schedules repository.ScheduleRepository,
	audit repository.AuditRepository,
	notifier Notifier,
	profile *config.StudioProfile,
	log *slog.Logger,
) *SchedulingService {
	if profile == nil {
		profile = config.DefaultStudioProfile()
	}
	if log == nil {
		log = slog.Default()
	}
	return &SchedulingService{
		events:    events,
		projects:  projects,
		users:     users,
		schedules: schedules,
		audit:     audit,
		notifier:  notifier,
		profile:   profile,
		log:       log.With("component", "scheduling"),
		now:       time.Now,
	}
}

// ===== Генерация слотов =====

// GenerateSlotsInput — параметры генерации. Пустые поля берутся из профиля студии.
type GenerateSlotsInput struct {
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	StartTime       string   `json:"start_time,omitempty"`
	EndTime         string   `json:"end_time,omitempty"`
	SlotDurationMin *int     `json:"slot_duration,omitempty"`
	ExcludeWeekends *bool    `json:"exclude_weekends,omitempty"`
	ExcludeDates    []string `json:"exclude_dates,omitempty"`
}

type GeneratedSlot struct {
	ID    uuid.UUID
	Start model.LocalDateTime
	End   model.LocalDateTime
}

type GenerateSlotsResult struct {
	ScheduleID *uuid.UUID
	Slots      []GeneratedSlot
}

type generationPlan struct {
	days            []time.Time
	startClock      time.Duration
	endClock        time.Duration
	slotDuration    time.Duration
	excludeWeekends bool
	excludeDates    map[string]struct{}
}

// GenerateSlots создаёт слоты для бронирования по рабочим дням диапазона.
// Слоты, пересекающиеся с занятыми событиями, молча пропускаются.
// Каждый слот сохраняется отдельно: ошибка посередине оставляет уже созданные.
func (s *SchedulingService) GenerateSlots(
	ctx context.Context,
	caller calendar.Caller,
	in GenerateSlotsInput,
) (*GenerateSlotsResult, error) {
	if err := calendar.RequireAdmin(caller); err != nil {
		return nil, err
	}

	plan, err := s.planGeneration(in)
	if err != nil {
		return nil, err
	}

	result := &GenerateSlotsResult{Slots: []GeneratedSlot{}}
	if len(plan.days) == 0 {
		return result, nil
	}

	// Занятые события за весь диапазон читаем один раз.
	windowFrom := model.NewLocalDateTime(utils.AtClock(plan.days[0], plan.startClock))
	windowTo := model.NewLocalDateTime(utils.AtClock(plan.days[len(plan.days)-1], plan.endClock))
	committed, err := s.events.ListCommittedInRange(ctx, windowFrom, windowTo)
	if err != nil {
		return nil, fmt.Errorf("list committed events: %w", err)
	}
	busy := toRanges(committed)

	schedule, err := s.recordSchedule(ctx, caller, plan, in)
	if err != nil {
		return nil, err
	}
	result.ScheduleID = &schedule.ID

	for _, day := range plan.days {
		if plan.excludeWeekends && utils.IsWeekend(day) {
			continue
		}
		if _, skip := plan.excludeDates[utils.DateKey(day)]; skip {
			continue
		}

		window := utils.TimeRange{
			Start: utils.AtClock(day, plan.startClock),
			End:   utils.AtClock(day, plan.endClock),
		}
		candidates, err := utils.SplitToTimeSlots(window, plan.slotDuration)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", calendar.ErrValidation, err)
		}

		for _, c := range candidates {
			if shouldSkip(c, busy) {
				continue
			}

			slot := &model.CalendarEvent{
				Title:           AvailableSlotTitle,
				EventType:       model.CalendarEventFilming,
				StartAt:         model.NewLocalDateTime(c.Start),
				EndAt:           model.NewLocalDateTime(c.End),
				IsAvailableSlot: true,
				ScheduleID:      &schedule.ID,
			}
			if err := s.events.Create(ctx, slot); err != nil {
				s.log.ErrorContext(ctx, "create slot failed",
					"schedule_id", schedule.ID, "created", len(result.Slots), "err", err)
				return nil, fmt.Errorf("create slot: %w", err)
			}
			result.Slots = append(result.Slots, GeneratedSlot{ID: slot.ID, Start: slot.StartAt, End: slot.EndAt})
		}
	}

	if err := s.schedules.SetSlotCount(ctx, schedule.ID, len(result.Slots)); err != nil {
		s.log.WarnContext(ctx, "update schedule slot count", "schedule_id", schedule.ID, "err", err)
	}
	s.recordAudit(ctx, model.AuditSlotsGenerated, &caller.UserID, &schedule.ID, map[string]any{
		"start_date": in.StartDate,
		"end_date":   in.EndDate,
		"slots":      len(result.Slots),
	})
	s.log.InfoContext(ctx, "slots generated",
		"schedule_id", schedule.ID, "slots", len(result.Slots), "by", caller.UserID)

	return result, nil
}

func (s *SchedulingService) planGeneration(in GenerateSlotsInput) (*generationPlan, error) {
	startDate, err := utils.ParseDate(in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date: %v", calendar.ErrValidation, err)
	}
	endDate, err := utils.ParseDate(in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date: %v", calendar.ErrValidation, err)
	}

	startClock, err := utils.ParseClock(firstNonEmpty(in.StartTime, s.profile.WorkingHours.Start, defaultStartClock))
	if err != nil {
		return nil, fmt.Errorf("%w: start_time: %v", calendar.ErrValidation, err)
	}
	endClock, err := utils.ParseClock(firstNonEmpty(in.EndTime, s.profile.WorkingHours.End, defaultEndClock))
	if err != nil {
		return nil, fmt.Errorf("%w: end_time: %v", calendar.ErrValidation, err)
	}
	if endClock <= startClock {
		return nil, fmt.Errorf("%w: end_time must be after start_time", calendar.ErrValidation)
	}

	durationMin := s.profile.SlotDurationMinutes
	if in.SlotDurationMin != nil {
		durationMin = *in.SlotDurationMin
	}
	if durationMin <= 0 {
		return nil, fmt.Errorf("%w: slot_duration must be positive", calendar.ErrValidation)
	}

	if n := utils.DaysBetween(startDate, endDate); n > s.profile.MaxGenerationDays {
		return nil, fmt.Errorf("%w: range of %d days exceeds the limit of %d",
			calendar.ErrValidation, n, s.profile.MaxGenerationDays)
	}

	excludeWeekends := s.profile.SkipWeekends()
	if in.ExcludeWeekends != nil {
		excludeWeekends = *in.ExcludeWeekends
	}

	excluded := make(map[string]struct{}, len(in.ExcludeDates)+len(s.profile.Holidays))
	for _, d := range append(append([]string{}, s.profile.Holidays...), in.ExcludeDates...) {
		day, err := utils.ParseDate(d)
		if err != nil {
			return nil, fmt.Errorf("%w: exclude_dates: %v", calendar.ErrValidation, err)
		}
		excluded[utils.DateKey(day)] = struct{}{}
	}

	return &generationPlan{
		days:            utils.EachDay(startDate, endDate),
		startClock:      startClock,
		endClock:        endClock,
		slotDuration:    time.Duration(durationMin) * time.Minute,
		excludeWeekends: excludeWeekends,
		excludeDates:    excluded,
	}, nil
}

func (s *SchedulingService) recordSchedule(
	ctx context.Context,
	caller calendar.Caller,
	plan *generationPlan,
	in GenerateSlotsInput,
) (*model.SlotSchedule, error) {
	rules, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal generation rules: %w", err)
	}
	createdBy := caller.UserID
	schedule := &model.SlotSchedule{
		CreatedBy: &createdBy,
		StartDate: datatypes.Date(plan.days[0]),
		EndDate:   datatypes.Date(plan.days[len(plan.days)-1]),
		Rules:     datatypes.JSON(rules),
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create slot schedule: %w", err)
	}
	return schedule, nil
}

// shouldSkip — политика генерации: кандидат, задевающий занятое время, не создаётся.
func shouldSkip(candidate utils.TimeRange, busy []utils.TimeRange) bool {
	return utils.HasOverlap(candidate, busy)
}

// ensureNoConflict — политика ручного создания: пересечение с занятым событием — ошибка.
func (s *SchedulingService) ensureNoConflict(ctx context.Context, start, end model.LocalDateTime) error {
	committed, err := s.events.ListCommittedInRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("list committed events: %w", err)
	}
	candidate := utils.TimeRange{Start: start.Time, End: end.Time}
	if utils.HasOverlap(candidate, toRanges(committed)) {
		return fmt.Errorf("%w: time slot conflicts with existing event", calendar.ErrConflict)
	}
	return nil
}

// ===== Бронирование =====

// BookSlot переводит свободный слот в забронированный за caller.
// Из двух одновременных бронирований одного слота успешно ровно одно,
// второе получает ErrAlreadyBooked.
func (s *SchedulingService) BookSlot(
	ctx context.Context,
	caller calendar.Caller,
	slotID uuid.UUID,
	projectID *uuid.UUID,
) (*model.CalendarEvent, error) {
	slot, err := s.events.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return nil, fmt.Errorf("%w: slot not found", calendar.ErrNotFound)
		}
		return nil, err
	}
	if !slot.IsAvailableSlot {
		return nil, fmt.Errorf("%w: slot not found", calendar.ErrNotFound)
	}
	if slot.IsBooked {
		return nil, calendar.ErrAlreadyBooked
	}

	if projectID != nil {
		if err := s.checkProjectAccess(ctx, caller, *projectID); err != nil {
			return nil, err
		}
	}

	ok, err := s.events.BookIfAvailable(ctx, slotID, caller.UserID, projectID)
	if err != nil {
		return nil, fmt.Errorf("book slot: %w", err)
	}
	if !ok {
		// Слот изменился между чтением и UPDATE: выясняем, что именно.
		current, err := s.events.GetByID(ctx, slotID)
		if err != nil || !current.IsAvailableSlot {
			return nil, fmt.Errorf("%w: slot not found", calendar.ErrNotFound)
		}
		return nil, calendar.ErrAlreadyBooked
	}

	booked, err := s.events.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("reload booked slot: %w", err)
	}

	s.recordAudit(ctx, model.AuditSlotBooked, &caller.UserID, &booked.ID, map[string]any{
		"start":      booked.StartAt.String(),
		"end":        booked.EndAt.String(),
		"project_id": projectID,
	})
	if s.notifier != nil {
		if err := s.notifier.NotifySlotBooked(ctx, caller, booked); err != nil {
			s.log.WarnContext(ctx, "booking notification failed", "slot_id", booked.ID, "err", err)
		}
	}
	s.log.InfoContext(ctx, "slot booked", "slot_id", booked.ID, "by", caller.UserID)

	return booked, nil
}

// checkProjectAccess: проект должен существовать; клиент может
// привязывать только свои проекты.
func (s *SchedulingService) checkProjectAccess(ctx context.Context, caller calendar.Caller, projectID uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			if caller.Restricted() {
				return fmt.Errorf("%w: invalid project", calendar.ErrForbidden)
			}
			return fmt.Errorf("%w: project not found", calendar.ErrValidation)
		}
		return err
	}
	if caller.Restricted() && project.ClientID != caller.UserID {
		return fmt.Errorf("%w: invalid project", calendar.ErrForbidden)
	}
	return nil
}

// ===== Ручные события =====

// EventInput — поля создания и частичного обновления события. nil — поле не передано.
// Время задаётся либо StartDateTime/EndDateTime, либо парами дата + время суток.
type EventInput struct {
	ProjectID *uuid.UUID
	ClientID  *uuid.UUID

	Title       *string
	Description *string
	EventType   *string

	StartDateTime *string
	EndDateTime   *string
	StartDate     *string
	StartTime     *string
	EndDate       *string
	EndTime       *string

	Location *string
	Color    *string

	IsAvailableSlot *bool
	AllDay          *bool
}

// CreateEvent создаёт событие от имени администратора. Занятое событие
// не может пересекаться с другим занятым (ErrConflict).
func (s *SchedulingService) CreateEvent(
	ctx context.Context,
	caller calendar.Caller,
	in EventInput,
) (*model.CalendarEvent, error) {
	if caller.Restricted() {
		return nil, fmt.Errorf("%w: clients can only book available slots", calendar.ErrForbidden)
	}

	title := strings.TrimSpace(deref(in.Title))
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", calendar.ErrValidation)
	}

	eventType := model.CalendarEventFilming
	if in.EventType != nil {
		eventType = model.CalendarEventType(*in.EventType)
		if !eventType.Valid() {
			return nil, fmt.Errorf("%w: unknown event_type %q", calendar.ErrValidation, *in.EventType)
		}
	}

	start, end, err := resolveCreateBounds(in)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start must be before end", calendar.ErrValidation)
	}

	if err := s.checkReferences(ctx, caller, in.ProjectID, in.ClientID); err != nil {
		return nil, err
	}

	ev := &model.CalendarEvent{
		ProjectID:       in.ProjectID,
		ClientID:        in.ClientID,
		Title:           title,
		Description:     in.Description,
		EventType:       eventType,
		StartAt:         start,
		EndAt:           end,
		Location:        in.Location,
		Color:           in.Color,
		AllDay:          deref(in.AllDay),
		IsAvailableSlot: deref(in.IsAvailableSlot),
	}

	if ev.Committed() {
		if err := s.ensureNoConflict(ctx, ev.StartAt, ev.EndAt); err != nil {
			return nil, err
		}
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.recordAudit(ctx, model.AuditEventCreated, &caller.UserID, &ev.ID, map[string]any{
		"title":      ev.Title,
		"event_type": ev.EventType,
		"start":      ev.StartAt.String(),
		"end":        ev.EndAt.String(),
	})
	s.log.InfoContext(ctx, "event created", "event_id", ev.ID, "by", caller.UserID)

	return s.events.GetByID(ctx, ev.ID)
}

// UpdateEvent — частичное обновление: непереданные поля сохраняют прежние значения.
// Конфликты с другими событиями при обновлении не проверяются.
func (s *SchedulingService) UpdateEvent(
	ctx context.Context,
	caller calendar.Caller,
	id uuid.UUID,
	in EventInput,
) (*model.CalendarEvent, error) {
	if err := calendar.RequireAdmin(caller); err != nil {
		return nil, err
	}

	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", calendar.ErrValidation)
		}
		ev.Title = title
	}
	if in.EventType != nil {
		t := model.CalendarEventType(*in.EventType)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown event_type %q", calendar.ErrValidation, *in.EventType)
		}
		ev.EventType = t
	}
	if in.Description != nil {
		ev.Description = in.Description
	}
	if in.Location != nil {
		ev.Location = in.Location
	}
	if in.Color != nil {
		ev.Color = in.Color
	}
	if in.AllDay != nil {
		ev.AllDay = *in.AllDay
	}
	if in.IsAvailableSlot != nil {
		if !*in.IsAvailableSlot && ev.IsBooked {
			return nil, fmt.Errorf("%w: a booked slot cannot become a regular event", calendar.ErrValidation)
		}
		ev.IsAvailableSlot = *in.IsAvailableSlot
	}
	if in.ClientID != nil {
		ev.ClientID = in.ClientID
	}
	if in.ProjectID != nil {
		ev.ProjectID = in.ProjectID
	}

	start, end, err := resolveUpdateBounds(in)
	if err != nil {
		return nil, err
	}
	if start != nil {
		ev.StartAt = *start
	}
	if end != nil {
		ev.EndAt = *end
	}
	if !ev.StartAt.Before(ev.EndAt) {
		return nil, fmt.Errorf("%w: start must be before end", calendar.ErrValidation)
	}

	if err := s.checkReferences(ctx, caller, in.ProjectID, in.ClientID); err != nil {
		return nil, err
	}

	if err := s.events.Update(ctx, ev); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, model.AuditEventUpdated, &caller.UserID, &ev.ID, map[string]any{
		"start": ev.StartAt.String(),
		"end":   ev.EndAt.String(),
	})
	s.log.InfoContext(ctx, "event updated", "event_id", ev.ID, "by", caller.UserID)

	return s.events.GetByID(ctx, ev.ID)
}

// DeleteEvent удаляет событие безусловно и физически.
func (s *SchedulingService) DeleteEvent(ctx context.Context, caller calendar.Caller, id uuid.UUID) error {
	if err := calendar.RequireAdmin(caller); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, model.AuditEventDeleted, &caller.UserID, &id, nil)
	s.log.InfoContext(ctx, "event deleted", "event_id", id, "by", caller.UserID)
	return nil
}

func (s *SchedulingService) checkReferences(
	ctx context.Context,
	caller calendar.Caller,
	projectID, clientID *uuid.UUID,
) error {
	if projectID != nil {
		if err := s.checkProjectAccess(ctx, caller, *projectID); err != nil {
			return err
		}
	}
	if clientID != nil && s.users != nil {
		if _, err := s.users.GetByID(ctx, *clientID); err != nil {
			if errors.Is(err, calendar.ErrNotFound) {
				return fmt.Errorf("%w: client not found", calendar.ErrValidation)
			}
			return err
		}
	}
	return nil
}

func resolveCreateBounds(in EventInput) (model.LocalDateTime, model.LocalDateTime, error) {
	switch {
	case in.StartDateTime != nil && *in.StartDateTime != "":
		start, err := parseLocal("start_datetime", *in.StartDateTime)
		if err != nil {
			return model.LocalDateTime{}, model.LocalDateTime{}, err
		}
		if in.EndDateTime == nil || *in.EndDateTime == "" {
			return model.LocalDateTime{}, model.LocalDateTime{},
				fmt.Errorf("%w: end date/time is required", calendar.ErrValidation)
		}
		end, err := parseLocal("end_datetime", *in.EndDateTime)
		return start, end, err
	case in.StartDate != nil && *in.StartDate != "":
		start, err := combineDateClock(*in.StartDate, deref(in.StartTime), defaultStartClock)
		if err != nil {
			return model.LocalDateTime{}, model.LocalDateTime{}, err
		}
		end, err := combineDateClock(firstNonEmpty(deref(in.EndDate), *in.StartDate), deref(in.EndTime), defaultEndClock)
		return start, end, err
	default:
		return model.LocalDateTime{}, model.LocalDateTime{},
			fmt.Errorf("%w: start date/time is required", calendar.ErrValidation)
	}
}

// resolveUpdateBounds собирает новые границы так же, как при создании;
// nil — граница не меняется.
func resolveUpdateBounds(in EventInput) (*model.LocalDateTime, *model.LocalDateTime, error) {
	var start, end *model.LocalDateTime

	if v := deref(in.StartDateTime); v != "" {
		t, err := parseLocal("start_datetime", v)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	} else if d := deref(in.StartDate); d != "" {
		t, err := combineDateClock(d, deref(in.StartTime), defaultStartClock)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}

	if v := deref(in.EndDateTime); v != "" {
		t, err := parseLocal("end_datetime", v)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	} else if d := firstNonEmpty(deref(in.EndDate), deref(in.StartDate)); d != "" {
		t, err := combineDateClock(d, deref(in.EndTime), defaultEndClock)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}

	return start, end, nil
}

func parseLocal(field, v string) (model.LocalDateTime, error) {
	t, err := model.ParseLocalDateTime(v)
	if err != nil {
		return model.LocalDateTime{}, fmt.Errorf("%w: %s: %v", calendar.ErrValidation, field, err)
	}
	return t, nil
}

func combineDateClock(date, clock, defClock string) (model.LocalDateTime, error) {
	day, err := utils.ParseDate(date)
	if err != nil {
		return model.LocalDateTime{}, fmt.Errorf("%w: %v", calendar.ErrValidation, err)
	}
	offset, err := utils.ParseClock(firstNonEmpty(clock, defClock))
	if err != nil {
		return model.LocalDateTime{}, fmt.Errorf("%w: %v", calendar.ErrValidation, err)
	}
	return model.NewLocalDateTime(utils.AtClock(day, offset)), nil
}

// ===== Чтение =====

// ListFilter — параметры выборки. Пустые строки — фильтр не задан.
// Page/PageSize = 0 — без пагинации, возвращаются все совпадения.
type ListFilter struct {
	StartDate string
	EndDate   string
	EventType string
	ProjectID string
	Page      int
	PageSize  int
}

type EventList struct {
	Events    []model.CalendarEvent
	Paginated bool
	Page      int
	PageSize  int
	Total     int
	HasNext   bool
}

// ListEvents — события по возрастанию начала. Клиент видит события своих
// проектов, события со своим client_id и все слоты для бронирования.
func (s *SchedulingService) ListEvents(
	ctx context.Context,
	caller calendar.Caller,
	f ListFilter,
) (*EventList, error) {
	filter, err := buildEventFilter(caller, f)
	if err != nil {
		return nil, err
	}

	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	if f.Page <= 0 && f.PageSize <= 0 {
		return &EventList{Events: events, Total: len(events)}, nil
	}

	page := calendar.Paginate(events, f.Page, f.PageSize)
	return &EventList{
		Events:    page.Items,
		Paginated: true,
		Page:      page.Page,
		PageSize:  page.PageSize,
		Total:     page.Total,
		HasNext:   page.HasNext,
	}, nil
}

func buildEventFilter(caller calendar.Caller, f ListFilter) (repository.EventFilter, error) {
	var filter repository.EventFilter

	if f.StartDate != "" {
		d, err := utils.ParseDate(f.StartDate)
		if err != nil {
			return filter, fmt.Errorf("%w: start: %v", calendar.ErrValidation, err)
		}
		filter.FromDate = &d
	}
	if f.EndDate != "" {
		d, err := utils.ParseDate(f.EndDate)
		if err != nil {
			return filter, fmt.Errorf("%w: end: %v", calendar.ErrValidation, err)
		}
		filter.ToDate = &d
	}
	if f.EventType != "" {
		t := model.CalendarEventType(f.EventType)
		if !t.Valid() {
			return filter, fmt.Errorf("%w: unknown event type %q", calendar.ErrValidation, f.EventType)
		}
		filter.EventType = t
	}
	if f.ProjectID != "" {
		id, err := uuid.Parse(f.ProjectID)
		if err != nil {
			return filter, fmt.Errorf("%w: project_id: %v", calendar.ErrValidation, err)
		}
		filter.ProjectID = &id
	}
	if caller.Restricted() {
		uid := caller.UserID
		filter.ScopeUserID = &uid
	}
	return filter, nil
}

// ListAvailableSlots — свободные слоты, целиком лежащие в [from, to].
// По умолчанию окно — от текущего момента на 30 дней вперёд.
func (s *SchedulingService) ListAvailableSlots(
	ctx context.Context,
	from, to *model.LocalDateTime,
) ([]model.CalendarEvent, error) {
	now := s.now()
	rangeFrom := model.NewLocalDateTime(now)
	rangeTo := model.NewLocalDateTime(now.Add(availableSlotsWindow))
	if from != nil {
		rangeFrom = *from
	}
	if to != nil {
		rangeTo = *to
	}

	slots, err := s.events.ListAvailable(ctx, rangeFrom, rangeTo)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return slots, nil
}

// GetEvent возвращает событие, если оно видно вызывающему.
// Чужие события для клиента неотличимы от отсутствующих.
func (s *SchedulingService) GetEvent(ctx context.Context, caller calendar.Caller, id uuid.UUID) (*model.CalendarEvent, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Restricted() && !visibleTo(ev, caller.UserID) {
		return nil, fmt.Errorf("%w: event not found", calendar.ErrNotFound)
	}
	return ev, nil
}

func visibleTo(ev *model.CalendarEvent, userID uuid.UUID) bool {
	if ev.IsAvailableSlot {
		return true
	}
	if ev.ClientID != nil && *ev.ClientID == userID {
		return true
	}
	return ev.Project != nil && ev.Project.ClientID == userID
}

// ===== Вспомогательное =====

func (s *SchedulingService) recordAudit(
	ctx context.Context,
	eventType model.AuditEventType,
	userID, targetID *uuid.UUID,
	details map[string]any,
) {
	if s.audit == nil {
		return
	}
	ev := &model.AuditEvent{EventType: eventType, UserID: userID, TargetID: targetID}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			s.log.WarnContext(ctx, "marshal audit details", "type", eventType, "err", err)
		} else {
			ev.Details = datatypes.JSON(raw)
		}
	}
	if err := s.audit.Create(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "write audit event", "type", eventType, "err", err)
	}
}

func toRanges(events []model.CalendarEvent) []utils.TimeRange {
	ranges := make([]utils.TimeRange, 0, len(events))
	for _, e := range events {
		ranges = append(ranges, utils.TimeRange{Start: e.StartAt.Time, End: e.EndAt.Time})
	}
	return ranges
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
