package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/studio-calendar/internal/config"
	"github.com/Leganyst/studio-calendar/internal/handler"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/notification"
	"github.com/Leganyst/studio-calendar/internal/repository"
	"github.com/Leganyst/studio-calendar/internal/service"
	"github.com/Leganyst/studio-calendar/internal/testdb"
)

type testApp struct {
	app         *fiber.App
	db          *gorm.DB
	adminToken  string
	clientToken string
	client      *model.User
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gdb := testdb.Open(t)

	users := repository.NewGormUserRepository(gdb)
	sink := notification.NewSink(users, repository.NewGormNotificationRepository(gdb), nil)
	profile := config.DefaultStudioProfile()
	profile.Name = "Northlight Films"

	svc := service.NewSchedulingService(
		repository.NewGormEventRepository(gdb),
		repository.NewGormProjectRepository(gdb),
		users,
		repository.NewGormScheduleRepository(gdb),
		repository.NewGormAuditRepository(gdb),
		sink,
		profile,
		nil,
	)
	identity := service.NewIdentityService(users, "router-test-secret", time.Hour)

	admin := testdb.CreateUser(t, gdb, model.RoleAdmin, "owner")
	client := testdb.CreateUser(t, gdb, model.RoleClient, "jane")
	adminToken, err := identity.IssueToken(admin)
	require.NoError(t, err)
	clientToken, err := identity.IssueToken(client)
	require.NoError(t, err)

	app := NewApp(Options{
		Calendar:  handler.NewCalendarHandler(svc, profile, nil),
		Auth:      identity,
		AccessLog: io.Discard,
	})

	return &testApp{app: app, db: gdb, adminToken: adminToken, clientToken: clientToken, client: client}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any, string) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out, string(raw)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	status, body, _ := a.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestAuthRequired(t *testing.T) {
	a := newTestApp(t)

	status, body, _ := a.do(t, http.MethodGet, "/api/calendar", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access token required", body["error"])

	status, body, _ = a.do(t, http.MethodGet, "/api/calendar", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", body["error"])
}

func TestGenerateListBookFlow(t *testing.T) {
	a := newTestApp(t)

	status, body, _ := a.do(t, http.MethodPost, "/api/calendar/generate-slots", a.adminToken, map[string]any{
		"start_date":    "2026-02-02",
		"end_date":      "2026-02-03",
		"start_time":    "09:00",
		"end_time":      "17:00",
		"slot_duration": 240,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Generated 4 available slots", body["message"])
	slots := body["slots"].([]any)
	require.Len(t, slots, 4)
	first := slots[0].(map[string]any)
	assert.Equal(t, "2026-02-02T09:00:00", first["start"])
	assert.Equal(t, "2026-02-02T13:00:00", first["end"])

	// клиент не может генерировать
	status, body, _ = a.do(t, http.MethodPost, "/api/calendar/generate-slots", a.clientToken, map[string]any{
		"start_date": "2026-02-02", "end_date": "2026-02-02",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Admin access required", body["error"])

	status, body, _ = a.do(t, http.MethodGet,
		"/api/calendar/available-slots?start=2026-02-01T00:00:00&end=2026-02-04T00:00:00", a.clientToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["slots"].([]any), 4)

	slotID := first["id"].(string)
	project := testdb.CreateProject(t, a.db, a.client.ID, "Jane wedding")

	status, body, _ = a.do(t, http.MethodPost, "/api/calendar/book/"+slotID, a.clientToken, map[string]any{
		"project_id": project.ID.String(),
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Slot booked successfully", body["message"])
	event := body["event"].(map[string]any)
	assert.Equal(t, true, event["is_booked"])
	assert.Equal(t, "Jane wedding", event["project_title"])
	assert.Equal(t, "2026-02-02", event["start_date"])
	assert.Equal(t, "09:00:00", event["start_time"])

	status, body, _ = a.do(t, http.MethodPost, "/api/calendar/book/"+slotID, a.clientToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Slot is already booked", body["error"])

	status, _, _ = a.do(t, http.MethodPost, "/api/calendar/book/not-a-uuid", a.clientToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var notifications int64
	require.NoError(t, a.db.Model(&model.Notification{}).Where("type = ?", model.NotificationSlotBooked).Count(&notifications).Error)
	assert.Equal(t, int64(1), notifications)

	status, body, _ = a.do(t, http.MethodGet, "/api/calendar?start=2026-02-02&end=2026-02-02&page=1&page_size=2", a.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["events"].([]any), 2)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, false, pagination["has_next"])
}

func TestCreateUpdateDelete(t *testing.T) {
	a := newTestApp(t)

	status, body, _ := a.do(t, http.MethodPost, "/api/calendar", a.adminToken, map[string]any{
		"title":          "Ceremony",
		"event_type":     "filming",
		"start_datetime": "2026-02-02T10:00:00",
		"end_datetime":   "2026-02-02T12:00:00",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Event created successfully", body["message"])
	id := body["event"].(map[string]any)["id"].(string)

	status, body, _ = a.do(t, http.MethodPost, "/api/calendar", a.adminToken, map[string]any{
		"title":          "Overlap",
		"start_datetime": "2026-02-02T11:00:00",
		"end_datetime":   "2026-02-02T13:00:00",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Time slot conflicts with existing event", body["error"])

	status, body, _ = a.do(t, http.MethodPost, "/api/calendar", a.adminToken, map[string]any{
		"start_date": "2026-02-05",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Title is required", body["error"])

	status, body, _ = a.do(t, http.MethodPost, "/api/calendar", a.adminToken, map[string]any{
		"title": "Bad type", "event_type": "party", "start_date": "2026-02-05",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "event_type")

	status, body, _ = a.do(t, http.MethodPost, "/api/calendar", a.clientToken, map[string]any{
		"title": "Mine", "start_date": "2026-02-05",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Clients can only book available slots", body["error"])

	status, body, _ = a.do(t, http.MethodPut, "/api/calendar/"+id, a.adminToken, map[string]any{
		"location": "Rooftop",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Rooftop", body["event"].(map[string]any)["location"])
	assert.Equal(t, "Ceremony", body["event"].(map[string]any)["title"])

	status, _, _ = a.do(t, http.MethodPut, "/api/calendar/"+id, a.clientToken, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ = a.do(t, http.MethodGet, "/api/calendar/"+id, a.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2026-02-02T10:00:00", body["event"].(map[string]any)["start_datetime"])

	// чужое событие клиент не видит
	status, _, _ = a.do(t, http.MethodGet, "/api/calendar/"+id, a.clientToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ = a.do(t, http.MethodDelete, "/api/calendar/"+id, a.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Event deleted successfully", body["message"])

	status, body, _ = a.do(t, http.MethodDelete, "/api/calendar/"+id, a.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Event not found", body["error"])
}

func TestFeed(t *testing.T) {
	a := newTestApp(t)
	testdb.CreateEvent(t, a.db, "Ceremony", "2026-02-02T10:00:00", "2026-02-02T12:00:00", false)
	testdb.CreateEvent(t, a.db, "Available for Booking", "2026-02-03T09:00:00", "2026-02-03T11:00:00", true)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/feed.ics", nil)
	req.Header.Set("Authorization", "Bearer "+a.clientToken)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(raw)
	assert.Contains(t, out, "X-WR-CALNAME:Northlight Films")
	// клиенту видны только слоты
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "DTSTART:20260203T090000")
}
