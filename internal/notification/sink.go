package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/repository"
	"github.com/Leganyst/studio-calendar/internal/utils"
)

const calendarLink = "/calendar"

// Sink пишет уведомления в таблицу notifications. Удалённых вызовов нет:
// доставкой (email, push) занимаются внешние сервисы, читающие таблицу.
type Sink struct {
	users repository.UserRepository
	repo  repository.NotificationRepository
	log   *slog.Logger
}

func NewSink(users repository.UserRepository, repo repository.NotificationRepository, log *slog.Logger) *Sink {
	if log == nil {
		log = slog.Default()
	}
	return &Sink{users: users, repo: repo, log: log.With("component", "notification")}
}

// NotifySlotBooked сообщает администратору студии, кто и на какое время забронировал слот.
func (s *Sink) NotifySlotBooked(ctx context.Context, booker calendar.Caller, slot *model.CalendarEvent) error {
	admin, err := s.users.FirstActiveAdmin(ctx)
	if err != nil {
		return fmt.Errorf("find notification recipient: %w", err)
	}

	who := booker.Name
	if who == "" {
		who = "A client"
	}
	when := utils.FormatSlotForUser(utils.TimeRange{Start: slot.StartAt.Time, End: slot.EndAt.Time}, false, "")

	return s.Send(ctx, admin.ID, model.NotificationSlotBooked,
		"Time Slot Booked",
		fmt.Sprintf("%s booked a time slot for %s", who, when),
		calendarLink,
	)
}

// Send сохраняет одно уведомление пользователю.
func (s *Sink) Send(ctx context.Context, userID uuid.UUID, kind, title, message, link string) error {
	n := &model.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if link != "" {
		n.Link = &link
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	s.log.DebugContext(ctx, "notification stored", "user_id", userID, "type", kind)
	return nil
}
