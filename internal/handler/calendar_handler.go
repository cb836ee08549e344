package handler

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/config"
	"github.com/Leganyst/studio-calendar/internal/ical"
	"github.com/Leganyst/studio-calendar/internal/middleware"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/service"
)

type CalendarHandler struct {
	svc      *service.SchedulingService
	profile  *config.StudioProfile
	validate *validator.Validate
	log      *slog.Logger
}

func NewCalendarHandler(svc *service.SchedulingService, profile *config.StudioProfile, log *slog.Logger) *CalendarHandler {
	if profile == nil {
		profile = config.DefaultStudioProfile()
	}
	if log == nil {
		log = slog.Default()
	}
	return &CalendarHandler{
		svc:      svc,
		profile:  profile,
		validate: newValidator(),
		log:      log.With("component", "http"),
	}
}

// List обрабатывает GET /api/calendar?start=&end=&type=&project_id=&page=&page_size=
func (h *CalendarHandler) List(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	list, err := h.svc.ListEvents(c.UserContext(), caller, listFilterFrom(c))
	if err != nil {
		return err
	}

	resp := fiber.Map{"events": toEventResponses(list.Events)}
	if list.Paginated {
		resp["pagination"] = PaginationResponse{
			Page:     list.Page,
			PageSize: list.PageSize,
			Total:    list.Total,
			HasNext:  list.HasNext,
		}
	}
	return c.JSON(resp)
}

// AvailableSlots обрабатывает GET /api/calendar/available-slots?start=&end=
// duration принимается для совместимости и не влияет на выборку.
func (h *CalendarHandler) AvailableSlots(c *fiber.Ctx) error {
	from, err := optionalLocal(c.Query("start"), "start")
	if err != nil {
		return err
	}
	to, err := optionalLocal(c.Query("end"), "end")
	if err != nil {
		return err
	}

	slots, err := h.svc.ListAvailableSlots(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"slots": toEventResponses(slots)})
}

// Feed обрабатывает GET /api/calendar/feed.ics, те же фильтры, что и у списка.
func (h *CalendarHandler) Feed(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	f := listFilterFrom(c)
	f.Page, f.PageSize = 0, 0
	list, err := h.svc.ListEvents(c.UserContext(), caller, f)
	if err != nil {
		return err
	}

	name := h.profile.Name
	if name == "" {
		name = "Studio calendar"
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="calendar.ics"`)
	return c.SendString(ical.Export(name, list.Events, time.Now().UTC()))
}

// Get обрабатывает GET /api/calendar/:id
func (h *CalendarHandler) Get(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id", "event")
	if err != nil {
		return err
	}

	ev, err := h.svc.GetEvent(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"event": toEventResponse(ev)})
}

// Create обрабатывает POST /api/calendar
func (h *CalendarHandler) Create(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req EventRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	ev, err := h.svc.CreateEvent(c.UserContext(), caller, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Event created successfully",
		"event":   toEventResponse(ev),
	})
}

// Book обрабатывает POST /api/calendar/book/:slotId, тело {project_id?} необязательно.
func (h *CalendarHandler) Book(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	slotID, err := pathUUID(c, "slotId", "slot")
	if err != nil {
		return err
	}

	var req BookSlotRequest
	if len(c.Body()) > 0 {
		if err := h.parseBody(c, &req); err != nil {
			return err
		}
	}
	projectID, err := optionalUUID("project_id", req.ProjectID)
	if err != nil {
		return err
	}

	ev, err := h.svc.BookSlot(c.UserContext(), caller, slotID, projectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Slot booked successfully",
		"event":   toEventResponse(ev),
	})
}

// Generate обрабатывает POST /api/calendar/generate-slots (админ)
func (h *CalendarHandler) Generate(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req GenerateSlotsRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.svc.GenerateSlots(c.UserContext(), caller, req.toInput())
	if err != nil {
		return err
	}

	slots := make([]SlotResponse, 0, len(res.Slots))
	for _, s := range res.Slots {
		slots = append(slots, SlotResponse{ID: s.ID, Start: s.Start, End: s.End})
	}
	return c.JSON(fiber.Map{
		"message":     fmt.Sprintf("Generated %d available slots", len(slots)),
		"slots":       slots,
		"schedule_id": res.ScheduleID,
	})
}

// Update обрабатывает PUT /api/calendar/:id (админ)
func (h *CalendarHandler) Update(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id", "event")
	if err != nil {
		return err
	}

	var req EventRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	ev, err := h.svc.UpdateEvent(c.UserContext(), caller, id, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Event updated successfully",
		"event":   toEventResponse(ev),
	})
}

// Delete обрабатывает DELETE /api/calendar/:id (админ)
func (h *CalendarHandler) Delete(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id", "event")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteEvent(c.UserContext(), caller, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Event deleted successfully"})
}

// Health отвечает на GET /api/health без авторизации.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *CalendarHandler) parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", calendar.ErrValidation)
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func requireCaller(c *fiber.Ctx) (calendar.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return calendar.Caller{}, fmt.Errorf("%w: authentication required", calendar.ErrUnauthorized)
	}
	return caller, nil
}

func listFilterFrom(c *fiber.Ctx) service.ListFilter {
	return service.ListFilter{
		StartDate: c.Query("start"),
		EndDate:   c.Query("end"),
		EventType: c.Query("type"),
		ProjectID: c.Query("project_id"),
		Page:      c.QueryInt("page", 0),
		PageSize:  c.QueryInt("page_size", 0),
	}
}

func pathUUID(c *fiber.Ctx, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		// id неверного формата неотличим от отсутствующей записи
		return uuid.Nil, fmt.Errorf("%w: %s not found", calendar.ErrNotFound, what)
	}
	return id, nil
}

// optionalLocal принимает и дату, и дату со временем (в том числе RFC3339).
func optionalLocal(v, field string) (*model.LocalDateTime, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := model.ParseLocalDateTime(v); err == nil {
		return &t, nil
	}
	if d, err := time.Parse("2006-01-02", v); err == nil {
		t := model.NewLocalDateTime(d)
		return &t, nil
	}
	return nil, fmt.Errorf("%w: invalid %s", calendar.ErrValidation, field)
}
