package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duesbook/internal/models"
)

// Position is one person's running totals for a period.
type Position struct {
	PersonID        string
	Paid            decimal.Decimal // contributed to expenses
	Consumed        decimal.Decimal // benefited from expenses
	SettledPaid     decimal.Decimal // settlements sent
	SettledReceived decimal.Decimal // settlements received
	Carried         decimal.Decimal // opening balance from a rollover
}

// Net is Paid - Consumed + SettledPaid - SettledReceived + Carried.
// Positive = owed money, Negative = owes money.
func (p *Position) Net() decimal.Decimal {
	return p.Paid.Sub(p.Consumed).Add(p.SettledPaid).Sub(p.SettledReceived).Add(p.Carried)
}

// Due is a directed transfer that moves money from a debtor to a creditor.
type Due struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// ComputePositions folds expenses, settlements and the carry-forward map into
// per-person totals.
//
// Algorithm:
//   - For each expense: every giver adds to Paid, every taker adds to Consumed
//   - For each settlement: the payer's position improves, the receiver's decreases
//   - Each person's carry-forward is added as Carried
func ComputePositions(expenses []*models.Expense, settlements []*models.Settlement, carryForward map[string]decimal.Decimal) map[string]*Position {
	positions := make(map[string]*Position)
	get := func(id string) *Position {
		p, ok := positions[id]
		if !ok {
			p = &Position{PersonID: id}
			positions[id] = p
		}
		return p
	}

	for _, e := range expenses {
		for _, g := range e.Givers {
			p := get(g.PersonID)
			p.Paid = p.Paid.Add(g.Amount)
		}
		for _, t := range e.Takers {
			p := get(t.PersonID)
			p.Consumed = p.Consumed.Add(t.Amount)
		}
	}

	for _, s := range settlements {
		from := get(s.FromID)
		from.SettledPaid = from.SettledPaid.Add(s.Amount)
		to := get(s.ToID)
		to.SettledReceived = to.SettledReceived.Add(s.Amount)
	}

	for id, amount := range carryForward {
		p := get(id)
		p.Carried = p.Carried.Add(amount)
	}

	return positions
}

// ComputeNetPositions returns person -> net for the given records.
// With a zero-sum carry-forward the nets sum to zero.
func ComputeNetPositions(expenses []*models.Expense, settlements []*models.Settlement, carryForward map[string]decimal.Decimal) map[string]decimal.Decimal {
	return NetOf(ComputePositions(expenses, settlements, carryForward))
}

// NetOf extracts the net of every position.
func NetOf(positions map[string]*Position) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal, len(positions))
	for id, p := range positions {
		net[id] = p.Net()
	}
	return net
}

type party struct {
	id        string
	remaining decimal.Decimal
}

// largest returns the index of the party with the largest remaining amount,
// breaking ties by the smaller person ID.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		c := parties[i].remaining.Cmp(parties[best].remaining)
		if c > 0 || (c == 0 && parties[i].id < parties[best].id) {
			best = i
		}
	}
	return best
}

// ComputeDues turns net positions into the transfers that zero them,
// using greedy matching: the largest remaining debtor pays the largest
// remaining creditor the smaller of the two amounts, and whoever reaches zero
// drops out. Every step retires at least one party, so n unsettled people
// need at most n-1 transfers. Output order is deterministic for identical input.
func ComputeDues(net map[string]decimal.Decimal) []Due {
	var debtors, creditors []party
	for id, amount := range net {
		if isZero(amount) {
			continue
		}
		if amount.IsNegative() {
			debtors = append(debtors, party{id: id, remaining: amount.Neg()})
		} else {
			creditors = append(creditors, party{id: id, remaining: amount})
		}
	}

	dues := []Due{}
	for len(debtors) > 0 && len(creditors) > 0 {
		di := largest(debtors)
		ci := largest(creditors)

		amount := decimal.Min(debtors[di].remaining, creditors[ci].remaining)
		dues = append(dues, Due{
			From:   debtors[di].id,
			To:     creditors[ci].id,
			Amount: amount,
		})

		debtors[di].remaining = debtors[di].remaining.Sub(amount)
		creditors[ci].remaining = creditors[ci].remaining.Sub(amount)

		if isZero(debtors[di].remaining) {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
		if isZero(creditors[ci].remaining) {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
	}

	return dues
}

// PersonStats is the per-person view of a period.
type PersonStats struct {
	PersonID        string
	Paid            decimal.Decimal
	Consumed        decimal.Decimal
	SettledPaid     decimal.Decimal
	SettledReceived decimal.Decimal
	SettledAmount   decimal.Decimal // SettledPaid - SettledReceived
	Carried         decimal.Decimal
	Owes            decimal.Decimal // sum of dues where this person pays
	Owed            decimal.Decimal // sum of dues where this person is paid
	Net             decimal.Decimal
}

// ComputeStats builds one PersonStats per person. People listed in
// personIDs come first in the given order (with zeros when they have no
// activity); anyone else appearing in positions follows in ID order.
func ComputeStats(personIDs []string, positions map[string]*Position, dues []Due) []PersonStats {
	owes := make(map[string]decimal.Decimal)
	owed := make(map[string]decimal.Decimal)
	for _, d := range dues {
		owes[d.From] = owes[d.From].Add(d.Amount)
		owed[d.To] = owed[d.To].Add(d.Amount)
	}

	ids := make([]string, 0, len(personIDs)+len(positions))
	listed := make(map[string]bool, len(personIDs))
	for _, id := range personIDs {
		if !listed[id] {
			listed[id] = true
			ids = append(ids, id)
		}
	}
	var extra []string
	for id := range positions {
		if !listed[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	ids = append(ids, extra...)

	stats := make([]PersonStats, 0, len(ids))
	for _, id := range ids {
		p, ok := positions[id]
		if !ok {
			p = &Position{PersonID: id}
		}
		stats = append(stats, PersonStats{
			PersonID:        id,
			Paid:            p.Paid,
			Consumed:        p.Consumed,
			SettledPaid:     p.SettledPaid,
			SettledReceived: p.SettledReceived,
			SettledAmount:   p.SettledPaid.Sub(p.SettledReceived),
			Carried:         p.Carried,
			Owes:            owes[id],
			Owed:            owed[id],
			Net:             p.Net(),
		})
	}
	return stats
}
