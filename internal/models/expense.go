package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an expense.
type Category string

const (
	CategoryFood      Category = "Food"
	CategoryTransport Category = "Transport"
	CategoryRent      Category = "Rent"
	CategoryUtility   Category = "Utility"
	CategoryOthers    Category = "Others"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryFood, CategoryTransport, CategoryRent, CategoryUtility, CategoryOthers}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SplitType tells how the taker amounts of an expense were produced.
type SplitType string

const (
	// SplitEqual divides the total across the listed takers in whole cents.
	SplitEqual SplitType = "equal"
	// SplitCustom uses the taker amounts exactly as entered.
	SplitCustom SplitType = "custom"
)

// Share is one person's weighted part of an expense, either as a giver
// (money paid out) or as a taker (benefit consumed).
type Share struct {
	PersonID string
	Amount   decimal.Decimal
}

// Expense represents money spent on behalf of one or more people.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Date is the calendar day the expense was incurred; it decides the Period.
	Date time.Time

	// Amount is the expense total. Givers and takers each sum to it.
	Amount decimal.Decimal

	Category Category

	// Reason is free text entered by the creator.
	Reason string

	SplitType SplitType

	// Givers paid the money out.
	Givers []Share

	// Takers benefited from the expense.
	Takers []Share

	// CreatedBy is the person ID who recorded the expense.
	CreatedBy string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// Period returns the period the expense is accounted in.
func (e *Expense) Period() Period {
	return PeriodOf(e.Date)
}

// People returns every person referenced by the expense, givers first,
// without duplicates.
func (e *Expense) People() []string {
	seen := make(map[string]bool, len(e.Givers)+len(e.Takers))
	var ids []string
	for _, list := range [][]Share{e.Givers, e.Takers} {
		for _, s := range list {
			if !seen[s.PersonID] {
				seen[s.PersonID] = true
				ids = append(ids, s.PersonID)
			}
		}
	}
	return ids
}

// ExpenseFilter narrows ListExpenses. A zero Category matches all categories.
type ExpenseFilter struct {
	Period   Period
	Category Category
}
