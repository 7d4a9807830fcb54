package ledger

import (
	"context"

	"github.com/mmynk/duesbook/internal/calculator"
	"github.com/mmynk/duesbook/internal/models"
)

// RecordSettlement stores a payment from settlement.FromID to settlement.ToID.
// A zero Period means the current period. Paying more than is owed is
// allowed; the surplus turns the payer into a creditor.
func (b *Book) RecordSettlement(ctx context.Context, actorID string, settlement *models.Settlement) error {
	if err := calculator.ValidateSettlement(settlement.FromID, settlement.ToID, settlement.Amount); err != nil {
		return err
	}
	if settlement.Period == (models.Period{}) {
		settlement.Period = b.CurrentPeriod()
	}
	if !settlement.Period.Valid() {
		return models.Invalid("period", "month must be 1-12, got %d-%d", settlement.Period.Year, settlement.Period.Month)
	}
	if err := b.checkPeople(ctx, settlement.FromID, settlement.ToID); err != nil {
		return err
	}

	settlement.CreatedBy = actorID
	if err := b.store.CreateSettlement(ctx, settlement); err != nil {
		return err
	}
	b.cache.Invalidate(settlement.Period)

	b.logger.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"from", settlement.FromID,
		"to", settlement.ToID,
		"amount", settlement.Amount,
		"period", settlement.Period,
	)
	b.record(ctx, actorID, models.ActionSettle, settlementDetail(settlement))
	return nil
}

// DeleteSettlement removes a settlement. Balances are recomputed from the
// remaining records, so the pre-settlement dues come back exactly.
func (b *Book) DeleteSettlement(ctx context.Context, actorID, id string) error {
	existing, err := b.store.GetSettlement(ctx, id)
	if err != nil {
		return err
	}
	if err := b.store.DeleteSettlement(ctx, id); err != nil {
		return err
	}
	b.cache.Invalidate(existing.Period)

	b.logger.Info("Settlement deleted", "settlement_id", id, "period", existing.Period)
	b.record(ctx, actorID, models.ActionDelete, settlementDetail(existing))
	return nil
}

// ListSettlements returns the settlements of a period, newest first.
func (b *Book) ListSettlements(ctx context.Context, period models.Period) ([]*models.Settlement, error) {
	snap, err := b.snapshot(ctx, period)
	if err != nil {
		return nil, err
	}
	return snap.Settlements, nil
}

// ClearSettlementHistory deletes every settlement in every period. Since
// balances are derived, the dues those settlements paid off reappear.
func (b *Book) ClearSettlementHistory(ctx context.Context, actorID string) (models.ClearDetail, error) {
	n, err := b.store.DeleteAllSettlements(ctx)
	if err != nil {
		return models.ClearDetail{}, err
	}
	b.cache.InvalidateAll()

	detail := models.ClearDetail{Scope: models.ClearSettlements, Settlements: n}
	b.logger.Warn("Settlement history cleared; previously settled dues are outstanding again",
		"actor_id", actorID,
		"settlements", n,
	)
	b.record(ctx, actorID, models.ActionClear, detail)
	return detail, nil
}

// ClearLedger deletes all expenses, settlements and rollovers. People and
// the activity log are kept.
func (b *Book) ClearLedger(ctx context.Context, actorID string) (models.ClearDetail, error) {
	detail, err := b.store.ClearLedger(ctx)
	if err != nil {
		return models.ClearDetail{}, err
	}
	b.cache.InvalidateAll()

	b.logger.Warn("Ledger cleared",
		"actor_id", actorID,
		"expenses", detail.Expenses,
		"settlements", detail.Settlements,
		"rollovers", detail.Rollovers,
	)
	b.record(ctx, actorID, models.ActionClear, detail)
	return detail, nil
}

func settlementDetail(s *models.Settlement) models.SettlementDetail {
	return models.SettlementDetail{
		SettlementID: s.ID,
		FromID:       s.FromID,
		ToID:         s.ToID,
		Amount:       s.Amount,
		Period:       s.Period.Key(),
	}
}
