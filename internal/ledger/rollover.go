package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/mmynk/duesbook/internal/calculator"
	"github.com/mmynk/duesbook/internal/metrics"
	"github.com/mmynk/duesbook/internal/models"
)

// Rollover carries the closing net positions of from into to as opening
// balances. A zero to means the month after from. The closing positions
// include whatever from itself had carried in.
//
// A period can be rolled out of once and into once; a repeat fails with a
// ConflictError until ResetRollover removes the earlier carry-forward.
func (b *Book) Rollover(ctx context.Context, actorID string, from, to models.Period) (*models.Rollover, error) {
	if !from.Valid() {
		return nil, models.Invalid("from", "month must be 1-12, got %d-%d", from.Year, from.Month)
	}
	if to == (models.Period{}) {
		to = from.Next()
	}
	if !to.Valid() {
		return nil, models.Invalid("to", "month must be 1-12, got %d-%d", to.Year, to.Month)
	}
	if !from.Before(to) {
		return nil, models.Invalid("to", "%s is not after %s", to, from)
	}

	snap, err := b.snapshot(ctx, from)
	if err != nil {
		return nil, err
	}
	net := calculator.ComputeNetPositions(snap.Expenses, snap.Settlements, snap.CarryForward)

	rollover := &models.Rollover{From: from, To: to, CreatedBy: actorID}
	for id, amount := range net {
		if amount.IsZero() {
			continue
		}
		rollover.Entries = append(rollover.Entries, models.CarryEntry{PersonID: id, Amount: amount})
	}
	sort.Slice(rollover.Entries, func(i, j int) bool {
		return rollover.Entries[i].PersonID < rollover.Entries[j].PersonID
	})

	if err := b.store.CreateRollover(ctx, rollover); err != nil {
		if errors.Is(err, models.ErrConflict) {
			metrics.RolloverConflicts.Inc()
			b.logger.Warn("Rollover rejected", "from", from, "to", to, "error", err)
		}
		return nil, err
	}
	b.cache.Invalidate(to)

	b.logger.Info("Balances rolled over", "rollover_id", rollover.ID, "from", from, "to", to, "people", len(rollover.Entries))
	b.record(ctx, actorID, models.ActionRollover, rolloverDetail(rollover))
	return rollover, nil
}

// ResetRollover removes the carry-forward into period, so that a rollover
// into it can be applied again.
func (b *Book) ResetRollover(ctx context.Context, actorID string, period models.Period) (*models.Rollover, error) {
	if !period.Valid() {
		return nil, models.Invalid("period", "month must be 1-12, got %d-%d", period.Year, period.Month)
	}
	rollover, err := b.store.DeleteRolloverInto(ctx, period)
	if err != nil {
		return nil, err
	}
	b.cache.Invalidate(period)

	b.logger.Info("Rollover reset", "rollover_id", rollover.ID, "from", rollover.From, "to", rollover.To)
	b.record(ctx, actorID, models.ActionReset, rolloverDetail(rollover))
	return rollover, nil
}

// CarryForward returns the opening balances of period.
func (b *Book) CarryForward(ctx context.Context, period models.Period) (*models.Rollover, error) {
	return b.store.GetRolloverInto(ctx, period)
}

func rolloverDetail(r *models.Rollover) models.RolloverDetail {
	return models.RolloverDetail{
		RolloverID: r.ID,
		From:       r.From.Key(),
		To:         r.To.Key(),
		People:     len(r.Entries),
	}
}
