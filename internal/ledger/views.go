package ledger

import (
	"context"

	"github.com/mmynk/duesbook/internal/calculator"
	"github.com/mmynk/duesbook/internal/metrics"
	"github.com/mmynk/duesbook/internal/models"
)

// Dues returns who owes whom in period, largest debts matched first.
func (b *Book) Dues(ctx context.Context, period models.Period) ([]calculator.Due, error) {
	snap, err := b.snapshot(ctx, period)
	if err != nil {
		return nil, err
	}
	net := calculator.ComputeNetPositions(snap.Expenses, snap.Settlements, snap.CarryForward)
	dues := calculator.ComputeDues(net)

	metrics.OpenDues.WithLabelValues(period.Key()).Set(float64(len(dues)))
	return dues, nil
}

// NetPositions returns every person's net position in period.
func (b *Book) NetPositions(ctx context.Context, period models.Period) (map[string]*calculator.Position, error) {
	snap, err := b.snapshot(ctx, period)
	if err != nil {
		return nil, err
	}
	return calculator.ComputePositions(snap.Expenses, snap.Settlements, snap.CarryForward), nil
}

// Stats returns the per-person breakdown of period. Everyone known to the
// ledger is listed, including people with no activity.
func (b *Book) Stats(ctx context.Context, period models.Period) ([]calculator.PersonStats, error) {
	positions, err := b.NetPositions(ctx, period)
	if err != nil {
		return nil, err
	}
	people, err := b.store.ListPeople(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	dues := calculator.ComputeDues(calculator.NetOf(positions))
	return calculator.ComputeStats(ids, positions, dues), nil
}

// Summary totals the expenses of period overall, per category and per payer.
func (b *Book) Summary(ctx context.Context, period models.Period) (calculator.Summary, error) {
	snap, err := b.snapshot(ctx, period)
	if err != nil {
		return calculator.Summary{}, err
	}
	return calculator.Summarize(snap.Expenses), nil
}
