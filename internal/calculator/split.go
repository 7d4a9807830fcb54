package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/duesbook/internal/models"
)

// epsilon is the tolerance for treating a balance as settled: one cent.
var epsilon = decimal.New(1, -2)

// isZero reports whether d is within epsilon of zero.
func isZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(epsilon)
}

// SplitEqually divides total across people in whole cents. Leftover cents go
// one each to the first people in the given order, so the shares always sum
// to total exactly.
func SplitEqually(total decimal.Decimal, people []string) ([]models.Share, error) {
	if len(people) == 0 {
		return nil, models.Invalid("takers", "must have at least one taker")
	}
	if !total.IsPositive() {
		return nil, models.Invalid("amount", "must be positive")
	}
	cents := total.Shift(2)
	if !cents.IsInteger() {
		return nil, models.Invalid("amount", "must have at most two decimal places for an equal split")
	}

	n := int64(len(people))
	all := cents.IntPart()
	base := all / n
	remainder := all % n

	shares := make([]models.Share, len(people))
	for i, p := range people {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = models.Share{PersonID: p, Amount: decimal.New(c, -2)}
	}
	return shares, nil
}

// ApplySplit fills in taker amounts for equal splits and then validates the
// expense. Custom splits are validated as entered.
func ApplySplit(e *models.Expense) error {
	if e.SplitType == "" {
		e.SplitType = models.SplitCustom
	}
	if e.SplitType == models.SplitEqual {
		people := make([]string, len(e.Takers))
		for i, t := range e.Takers {
			people[i] = t.PersonID
		}
		if err := checkShares("takers", e.Takers); err != nil {
			return err
		}
		shares, err := SplitEqually(e.Amount, people)
		if err != nil {
			return err
		}
		e.Takers = shares
	}
	return ValidateExpense(e)
}

// ValidateExpense checks the expense invariants: positive total, known
// category, non-empty giver and taker sets whose sums each equal the total
// exactly. Any drift would leave nets that no longer sum to zero.
func ValidateExpense(e *models.Expense) error {
	if e.Date.IsZero() {
		return models.Invalid("date", "is required")
	}
	if !e.Amount.IsPositive() {
		return models.Invalid("amount", "must be positive, got %s", e.Amount)
	}
	if !e.Category.Valid() {
		return models.Invalid("category", "unknown category %q", e.Category)
	}
	if e.SplitType != models.SplitEqual && e.SplitType != models.SplitCustom {
		return models.Invalid("split_type", "unknown split type %q", e.SplitType)
	}
	if err := checkShares("givers", e.Givers); err != nil {
		return err
	}
	if err := checkShares("takers", e.Takers); err != nil {
		return err
	}
	if sum := sumShares(e.Givers); !sum.Equal(e.Amount) {
		return models.Invalid("givers", "contributions sum to %s, expected %s", sum, e.Amount)
	}
	if sum := sumShares(e.Takers); !sum.Equal(e.Amount) {
		return models.Invalid("takers", "benefits sum to %s, expected %s", sum, e.Amount)
	}
	return nil
}

// ValidateSettlement checks that a payment moves a positive amount between
// two different people. Overpaying a due is allowed.
func ValidateSettlement(fromID, toID string, amount decimal.Decimal) error {
	if fromID == "" {
		return models.Invalid("from", "is required")
	}
	if toID == "" {
		return models.Invalid("to", "is required")
	}
	if fromID == toID {
		return models.Invalid("to", "cannot settle with yourself")
	}
	if !amount.IsPositive() {
		return models.Invalid("amount", "must be positive, got %s", amount)
	}
	return nil
}

func checkShares(field string, shares []models.Share) error {
	if len(shares) == 0 {
		return models.Invalid(field, "must not be empty")
	}
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if s.PersonID == "" {
			return models.Invalid(field, "person is required")
		}
		if seen[s.PersonID] {
			return models.Invalid(field, "person %s listed more than once", s.PersonID)
		}
		seen[s.PersonID] = true
		if s.Amount.IsNegative() {
			return models.Invalid(field, "amount for %s must not be negative", s.PersonID)
		}
	}
	return nil
}

func sumShares(shares []models.Share) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}
