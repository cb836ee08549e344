package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// Scheduler запускает Jobs по cron-расписанию.
type Scheduler struct {
	cron *cron.Cron
	jobs *Jobs
	log  *slog.Logger
}

func NewScheduler(jobs *Jobs, reminderSpec, digestSpec string, log *slog.Logger) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	cronLog := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))

	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	s := &Scheduler{cron: c, jobs: jobs, log: log.With("component", "scheduler")}

	if _, err := c.AddFunc(reminderSpec, s.runReminders); err != nil {
		return nil, fmt.Errorf("reminder schedule %q: %w", reminderSpec, err)
	}
	if _, err := c.AddFunc(digestSpec, s.runDigest); err != nil {
		return nil, fmt.Errorf("digest schedule %q: %w", digestSpec, err)
	}
	return s, nil
}

// Run блокируется до отмены ctx, затем ждёт завершения запущенных задач.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.jobs.SendReminders(ctx); err != nil {
		s.log.Error("reminder job failed", "err", err)
	}
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.jobs.SendDigest(ctx); err != nil {
		s.log.Error("digest job failed", "err", err)
	}
}
