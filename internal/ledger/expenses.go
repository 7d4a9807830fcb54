package ledger

import (
	"context"
	"time"

	"github.com/mmynk/duesbook/internal/calculator"
	"github.com/mmynk/duesbook/internal/models"
)

const dateLayout = "2006-01-02"

// CreateExpense validates and stores a new expense. Equal splits have their
// taker amounts filled in; every referenced person must exist.
func (b *Book) CreateExpense(ctx context.Context, actorID string, expense *models.Expense) error {
	expense.Date = dateOnly(expense.Date)
	if err := calculator.ApplySplit(expense); err != nil {
		return err
	}
	if err := b.checkPeople(ctx, expense.People()...); err != nil {
		return err
	}

	expense.CreatedBy = actorID
	if err := b.store.CreateExpense(ctx, expense); err != nil {
		return err
	}
	b.cache.Invalidate(expense.Period())

	b.logger.Info("Expense created",
		"expense_id", expense.ID,
		"period", expense.Period(),
		"amount", expense.Amount,
		"category", expense.Category,
	)
	b.record(ctx, actorID, models.ActionCreate, expenseDetail(expense))
	return nil
}

// UpdateExpense replaces an existing expense, including both share sets.
// The creator and creation time are preserved.
func (b *Book) UpdateExpense(ctx context.Context, actorID string, expense *models.Expense) error {
	existing, err := b.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return err
	}

	expense.Date = dateOnly(expense.Date)
	if err := calculator.ApplySplit(expense); err != nil {
		return err
	}
	if err := b.checkPeople(ctx, expense.People()...); err != nil {
		return err
	}

	expense.CreatedBy = existing.CreatedBy
	expense.CreatedAt = existing.CreatedAt
	if err := b.store.UpdateExpense(ctx, expense); err != nil {
		return err
	}
	// The date may have moved the expense into another period.
	b.cache.Invalidate(existing.Period(), expense.Period())

	b.logger.Info("Expense updated", "expense_id", expense.ID, "period", expense.Period())
	b.record(ctx, actorID, models.ActionUpdate, expenseDetail(expense))
	return nil
}

// DeleteExpense removes an expense.
func (b *Book) DeleteExpense(ctx context.Context, actorID, id string) error {
	existing, err := b.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := b.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	b.cache.Invalidate(existing.Period())

	b.logger.Info("Expense deleted", "expense_id", id, "period", existing.Period())
	b.record(ctx, actorID, models.ActionDelete, expenseDetail(existing))
	return nil
}

// GetExpense retrieves one expense.
func (b *Book) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	return b.store.GetExpense(ctx, id)
}

// ListExpenses returns the expenses of a period, optionally narrowed to one
// category.
func (b *Book) ListExpenses(ctx context.Context, filter models.ExpenseFilter) ([]*models.Expense, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, models.Invalid("category", "unknown category %q", filter.Category)
	}
	snap, err := b.snapshot(ctx, filter.Period)
	if err != nil {
		return nil, err
	}
	if filter.Category == "" {
		return snap.Expenses, nil
	}

	var out []*models.Expense
	for _, e := range snap.Expenses {
		if e.Category == filter.Category {
			out = append(out, e)
		}
	}
	return out, nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func expenseDetail(e *models.Expense) models.ExpenseDetail {
	return models.ExpenseDetail{
		ExpenseID: e.ID,
		Date:      e.Date.Format(dateLayout),
		Amount:    e.Amount,
		Category:  e.Category,
		Reason:    e.Reason,
	}
}
