package models

import "github.com/shopspring/decimal"

// Settlement represents a real-world payment made to reduce a pairwise balance.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Period is the month whose ledger the payment is applied to.
	Period Period

	// FromID is the person who paid (debtor settling up).
	FromID string

	// ToID is the person who received payment (creditor being paid).
	ToID string

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the person ID who recorded this settlement.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}
