package models

import "github.com/shopspring/decimal"

// Rollover records that the closing net positions of From were carried into
// To as opening balances. At most one rollover leaves a period and at most
// one enters a period.
type Rollover struct {
	// ID is the unique identifier for the rollover (UUID format).
	ID string

	From Period
	To   Period

	// Entries holds the carried balance of every person whose net was non-zero.
	Entries []CarryEntry

	CreatedAt int64
	CreatedBy string
}

// CarryEntry is one person's carried-forward balance.
type CarryEntry struct {
	PersonID string
	Amount   decimal.Decimal
}

// CarryForward returns the entries as a person -> amount map.
func (r *Rollover) CarryForward() map[string]decimal.Decimal {
	cf := make(map[string]decimal.Decimal, len(r.Entries))
	for _, e := range r.Entries {
		cf[e.PersonID] = cf[e.PersonID].Add(e.Amount)
	}
	return cf
}
