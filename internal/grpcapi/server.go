// Package grpcapi — gRPC-транспорт движка календаря для внутренних сервисов студии.
package grpcapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/service"
)

// Server реализует SchedulingServer поверх SchedulingService.
type Server struct {
	svc *service.SchedulingService
}

func NewServer(svc *service.SchedulingService) *Server {
	return &Server{svc: svc}
}

// NewGRPCServer собирает grpc.Server: интерцепторы, сервис календаря,
// health и reflection.
func NewGRPCServer(svc *service.SchedulingService, auth Authenticator, log *slog.Logger) (*grpc.Server, *health.Server) {
	if log == nil {
		log = slog.Default()
	}
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		LoggingInterceptor(log.With("component", "grpc")),
		AuthInterceptor(auth),
	))

	RegisterSchedulingServer(srv, NewServer(svc))

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	reflection.Register(srv)
	return srv, healthSrv
}

// ListAvailableSlots: {start?, end?} -> {slots: [...]}
func (s *Server) ListAvailableSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, ok := CallerFromContext(ctx); !ok {
		return nil, toStatus(calendar.ErrUnauthorized)
	}

	from, err := optionalLocal(req, "start")
	if err != nil {
		return nil, toStatus(err)
	}
	to, err := optionalLocal(req, "end")
	if err != nil {
		return nil, toStatus(err)
	}

	slots, err := s.svc.ListAvailableSlots(ctx, from, to)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(slots))
	for i := range slots {
		items = append(items, eventFields(&slots[i]))
	}
	return newStruct(map[string]any{"slots": items})
}

// BookSlot: {slot_id, project_id?} -> {message, event}
func (s *Server) BookSlot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return nil, toStatus(calendar.ErrUnauthorized)
	}

	slotID, err := uuid.Parse(stringField(req, "slot_id"))
	if err != nil {
		return nil, toStatus(fmt.Errorf("%w: slot_id must be a uuid", calendar.ErrValidation))
	}
	var projectID *uuid.UUID
	if v := stringField(req, "project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, toStatus(fmt.Errorf("%w: project_id must be a uuid", calendar.ErrValidation))
		}
		projectID = &id
	}

	ev, err := s.svc.BookSlot(ctx, caller, slotID, projectID)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		"message": "Slot booked successfully",
		"event":   eventFields(ev),
	})
}

func eventFields(ev *model.CalendarEvent) map[string]any {
	m := map[string]any{
		"id":                ev.ID.String(),
		"title":             ev.Title,
		"event_type":        string(ev.EventType),
		"start_datetime":    ev.StartAt.String(),
		"end_datetime":      ev.EndAt.String(),
		"is_available_slot": ev.IsAvailableSlot,
		"is_booked":         ev.IsBooked,
		"all_day":           ev.AllDay,
	}
	if ev.ProjectID != nil {
		m["project_id"] = ev.ProjectID.String()
	}
	if ev.BookedBy != nil {
		m["booked_by"] = ev.BookedBy.String()
	}
	if ev.Location != nil {
		m["location"] = *ev.Location
	}
	if ev.Project != nil {
		m["project_title"] = ev.Project.Title
	}
	return m
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, toStatus(fmt.Errorf("encode response: %w", err))
	}
	return out, nil
}

func stringField(req *structpb.Struct, name string) string {
	return strings.TrimSpace(req.GetFields()[name].GetStringValue())
}

func optionalLocal(req *structpb.Struct, name string) (*model.LocalDateTime, error) {
	v := stringField(req, name)
	if v == "" {
		return nil, nil
	}
	t, err := model.ParseLocalDateTime(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", calendar.ErrValidation, name, err)
	}
	return &t, nil
}
