// Package scheduler runs the automatic month-end rollover.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/duesbook/internal/models"
)

// DefaultSchedule fires at five past midnight on the first of every month.
const DefaultSchedule = "5 0 1 * *"

// SystemActor is recorded as the actor of scheduled rollovers.
const SystemActor = "system"

// Roller is the part of the ledger the scheduler drives.
type Roller interface {
	CurrentPeriod() models.Period
	Rollover(ctx context.Context, actorID string, from, to models.Period) (*models.Rollover, error)
}

// Scheduler carries the previous month's balances into the current month.
type Scheduler struct {
	cron    *cron.Cron
	roller  Roller
	timeout time.Duration
}

// New registers the rollover job on schedule, evaluated in loc.
func New(roller Roller, schedule string, loc *time.Location) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		roller:  roller,
		timeout: 30 * time.Second,
	}
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("failed to schedule rollover job %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the cron loop and blocks until ctx is done, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	slog.Info("Rollover scheduler started", "next_run", s.Next())

	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("Rollover scheduler stopped")
	return nil
}

// Next reports when the job fires next.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := RollPrevious(ctx, s.roller); err != nil {
		slog.Error("Scheduled rollover failed", "error", err)
	}
}

// RollPrevious rolls the month before the current period into the current
// period. A rollover that was already applied is not an error.
func RollPrevious(ctx context.Context, roller Roller) error {
	to := roller.CurrentPeriod()
	from := to.Prev()

	rollover, err := roller.Rollover(ctx, SystemActor, from, to)
	if errors.Is(err, models.ErrConflict) {
		slog.Info("Scheduled rollover skipped", "from", from, "to", to, "reason", err)
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("Scheduled rollover applied", "from", from, "to", to, "people", len(rollover.Entries))
	return nil
}
