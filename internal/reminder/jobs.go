// Package reminder — фоновые задачи календаря: напоминания о завтрашних
// событиях и утренняя сводка для администратора.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/repository"
	"github.com/Leganyst/studio-calendar/internal/utils"
)

const calendarLink = "/calendar"

// Sender доставляет уведомление пользователю.
type Sender interface {
	Send(ctx context.Context, userID uuid.UUID, kind, title, message, link string) error
}

type Jobs struct {
	events repository.EventRepository
	users  repository.UserRepository
	audit  repository.AuditRepository
	sender Sender
	log    *slog.Logger

	now func() time.Time
}

func NewJobs(
	events repository.EventRepository,
	users repository.UserRepository,
	audit repository.AuditRepository,
	sender Sender,
	log *slog.Logger,
) *Jobs {
	if log == nil {
		log = slog.Default()
	}
	return &Jobs{
		events: events,
		users:  users,
		audit:  audit,
		sender: sender,
		log:    log.With("component", "reminder"),
		now:    time.Now,
	}
}

// SendReminders напоминает владельцам событий, начинающихся завтра.
// Каждое событие получает не больше одного напоминания.
func (j *Jobs) SendReminders(ctx context.Context) (int, error) {
	today := startOfDay(j.now())
	from := model.NewLocalDateTime(today.AddDate(0, 0, 1))
	to := model.NewLocalDateTime(today.AddDate(0, 0, 2))

	events, err := j.events.ListScheduledStarting(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list tomorrow events: %w", err)
	}

	sent := 0
	for i := range events {
		ev := &events[i]
		owner := ev.OwnerID()
		if owner == nil {
			continue
		}

		done, err := j.audit.Exists(ctx, model.AuditReminderSent, &ev.ID, nil)
		if err != nil {
			return sent, fmt.Errorf("check reminder for %s: %w", ev.ID, err)
		}
		if done {
			continue
		}

		when := utils.FormatSlotForUser(utils.TimeRange{Start: ev.StartAt.Time, End: ev.EndAt.Time}, false, "")
		if err := j.sender.Send(ctx, *owner, model.NotificationReminder,
			"Upcoming: "+ev.Title,
			fmt.Sprintf("%s is scheduled for %s", ev.Title, when),
			calendarLink,
		); err != nil {
			j.log.WarnContext(ctx, "send reminder failed", "event_id", ev.ID, "err", err)
			continue
		}

		if err := j.audit.Create(ctx, &model.AuditEvent{
			EventType: model.AuditReminderSent,
			UserID:    owner,
			TargetID:  &ev.ID,
		}); err != nil {
			return sent, fmt.Errorf("record reminder for %s: %w", ev.ID, err)
		}
		sent++
	}

	j.log.InfoContext(ctx, "reminders sent", "count", sent, "candidates", len(events))
	return sent, nil
}

// SendDigest отправляет первому активному администратору сводку на сегодня.
// Повторный запуск в тот же день ничего не отправляет.
func (j *Jobs) SendDigest(ctx context.Context) (bool, error) {
	now := j.now()
	today := startOfDay(now)

	admin, err := j.users.FirstActiveAdmin(ctx)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			j.log.InfoContext(ctx, "digest skipped: no active admin")
			return false, nil
		}
		return false, fmt.Errorf("find digest recipient: %w", err)
	}

	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UTC()
	done, err := j.audit.Exists(ctx, model.AuditDigestSent, nil, &since)
	if err != nil {
		return false, fmt.Errorf("check digest: %w", err)
	}
	if done {
		return false, nil
	}

	// в сводку попадают только занятые события, слоты (даже забронированные) не считаются
	events, err := j.events.ListCommittedStarting(ctx,
		model.NewLocalDateTime(today),
		model.NewLocalDateTime(today.AddDate(0, 0, 1)))
	if err != nil {
		return false, fmt.Errorf("list today events: %w", err)
	}

	if err := j.sender.Send(ctx, admin.ID, model.NotificationDigest,
		"Daily Digest",
		fmt.Sprintf("You have %d event(s) scheduled today", len(events)),
		calendarLink,
	); err != nil {
		return false, fmt.Errorf("send digest: %w", err)
	}

	if err := j.audit.Create(ctx, &model.AuditEvent{
		EventType: model.AuditDigestSent,
		UserID:    &admin.ID,
	}); err != nil {
		return true, fmt.Errorf("record digest: %w", err)
	}

	j.log.InfoContext(ctx, "digest sent", "admin_id", admin.ID, "events", len(events))
	return true, nil
}

// startOfDay — полночь по настенным часам now, без часового пояса.
func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
