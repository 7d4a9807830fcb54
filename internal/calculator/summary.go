package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duesbook/internal/models"
)

// CategoryTotal is the spend of one category.
type CategoryTotal struct {
	Category models.Category
	Total    decimal.Decimal
	Count    int
}

// PayerTotal is how much one person paid out across expenses.
type PayerTotal struct {
	PersonID string
	Total    decimal.Decimal
	Count    int
}

// Summary aggregates the expenses of a period.
type Summary struct {
	Total      decimal.Decimal
	Count      int
	ByCategory []CategoryTotal
	ByPayer    []PayerTotal
}

// Summarize totals expenses overall, per category and per giver. Both
// breakdowns are sorted by total descending, then by key.
func Summarize(expenses []*models.Expense) Summary {
	sum := Summary{Total: decimal.Zero}
	byCategory := make(map[models.Category]*CategoryTotal)
	byPayer := make(map[string]*PayerTotal)

	for _, e := range expenses {
		sum.Total = sum.Total.Add(e.Amount)
		sum.Count++

		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCategory[e.Category] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++

		for _, g := range e.Givers {
			if g.Amount.IsZero() {
				continue
			}
			pt, ok := byPayer[g.PersonID]
			if !ok {
				pt = &PayerTotal{PersonID: g.PersonID}
				byPayer[g.PersonID] = pt
			}
			pt.Total = pt.Total.Add(g.Amount)
			pt.Count++
		}
	}

	for _, ct := range byCategory {
		sum.ByCategory = append(sum.ByCategory, *ct)
	}
	sort.Slice(sum.ByCategory, func(i, j int) bool {
		a, b := sum.ByCategory[i], sum.ByCategory[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})

	for _, pt := range byPayer {
		sum.ByPayer = append(sum.ByPayer, *pt)
	}
	sort.Slice(sum.ByPayer, func(i, j int) bool {
		a, b := sum.ByPayer[i], sum.ByPayer[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.PersonID < b.PersonID
	})

	return sum
}
