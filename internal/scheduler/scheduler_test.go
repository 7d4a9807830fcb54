package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/duesbook/internal/models"
)

type fakeRoller struct {
	current models.Period
	err     error
	calls   [][2]models.Period
}

func (f *fakeRoller) CurrentPeriod() models.Period { return f.current }

func (f *fakeRoller) Rollover(_ context.Context, actorID string, from, to models.Period) (*models.Rollover, error) {
	f.calls = append(f.calls, [2]models.Period{from, to})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Rollover{From: from, To: to, CreatedBy: actorID}, nil
}

func TestRollPrevious(t *testing.T) {
	tests := []struct {
		name     string
		current  models.Period
		err      error
		wantFrom models.Period
		wantErr  bool
	}{
		{
			name:     "mid year",
			current:  models.Period{Month: 5, Year: 2026},
			wantFrom: models.Period{Month: 4, Year: 2026},
		},
		{
			name:     "january rolls december",
			current:  models.Period{Month: 1, Year: 2027},
			wantFrom: models.Period{Month: 12, Year: 2026},
		},
		{
			name:     "already rolled over",
			current:  models.Period{Month: 5, Year: 2026},
			err:      models.Conflict("balances already rolled over"),
			wantFrom: models.Period{Month: 4, Year: 2026},
		},
		{
			name:     "store failure",
			current:  models.Period{Month: 5, Year: 2026},
			err:      errors.New("disk I/O error"),
			wantFrom: models.Period{Month: 4, Year: 2026},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := &fakeRoller{current: tt.current, err: tt.err}
			err := RollPrevious(context.Background(), roller)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RollPrevious error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(roller.calls) != 1 {
				t.Fatalf("expected 1 rollover call, got %d", len(roller.calls))
			}
			if roller.calls[0][0] != tt.wantFrom || roller.calls[0][1] != tt.current {
				t.Errorf("rolled %s -> %s, want %s -> %s", roller.calls[0][0], roller.calls[0][1], tt.wantFrom, tt.current)
			}
		})
	}
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	if _, err := New(&fakeRoller{}, "not a cron line", time.UTC); err == nil {
		t.Error("expected error for invalid schedule")
	}

	s, err := New(&fakeRoller{}, "", time.UTC)
	if err != nil {
		t.Fatalf("New with default schedule failed: %v", err)
	}
	if len(s.cron.Entries()) != 1 {
		t.Errorf("expected 1 scheduled entry, got %d", len(s.cron.Entries()))
	}
}
