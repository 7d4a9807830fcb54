// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/duesbook/internal/models"
)

// PersonStore holds the people known to the ledger. It doubles as the
// account storage used by package auth.
type PersonStore interface {
	// CreatePerson persists a new person. Fails with a ConflictError if the
	// email is already registered.
	CreatePerson(ctx context.Context, person *models.Person) error

	// GetPerson returns a NotFoundError for unknown IDs.
	GetPerson(ctx context.Context, id string) (*models.Person, error)

	// GetPersonByEmail returns a NotFoundError for unknown emails.
	GetPersonByEmail(ctx context.Context, email string) (*models.Person, error)

	// ListPeople returns everyone ordered by name.
	ListPeople(ctx context.Context) ([]*models.Person, error)

	// UpdatePersonName renames a person. Returns a NotFoundError for unknown IDs.
	UpdatePersonName(ctx context.Context, id, name string) error
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer. Every multi-row write is atomic.
type Store interface {
	PersonStore

	// CreateExpense persists a new expense together with its givers and takers.
	// The expense.ID, CreatedAt and UpdatedAt fields are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// UpdateExpense replaces an existing expense, including its giver and taker sets.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, id string) error

	// ListExpenses returns the expenses of a period, newest date first.
	ListExpenses(ctx context.Context, filter models.ExpenseFilter) ([]*models.Expense, error)

	// CreateSettlement persists a new settlement. ID and CreatedAt are populated.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, id string) (*models.Settlement, error)

	// ListSettlements returns the settlements of a period, newest first.
	ListSettlements(ctx context.Context, period models.Period) ([]*models.Settlement, error)

	// DeleteSettlement removes a settlement by ID.
	DeleteSettlement(ctx context.Context, id string) error

	// DeleteAllSettlements removes every settlement and reports how many went.
	DeleteAllSettlements(ctx context.Context) (int64, error)

	// CreateRollover writes a rollover and all of its entries in one
	// transaction. Fails with a ConflictError if a rollover already leaves
	// rollover.From or already enters rollover.To.
	CreateRollover(ctx context.Context, rollover *models.Rollover) error

	// GetRolloverInto returns the rollover whose To is period.
	GetRolloverInto(ctx context.Context, period models.Period) (*models.Rollover, error)

	// DeleteRolloverInto removes the rollover whose To is period and returns it.
	DeleteRolloverInto(ctx context.Context, period models.Period) (*models.Rollover, error)

	// ClearLedger removes all expenses, settlements and rollovers, keeping people.
	ClearLedger(ctx context.Context) (models.ClearDetail, error)

	// AppendActivity writes an audit entry. ID and At are populated if empty.
	AppendActivity(ctx context.Context, activity *models.Activity) error

	// ListActivity returns the most recent entries first.
	ListActivity(ctx context.Context, limit int) ([]*models.Activity, error)

	// Close releases any resources held by the store.
	Close() error
}
