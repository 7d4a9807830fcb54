// Package api defines the request and response messages of the duesbook
// RPC services. Messages travel as JSON; money amounts are decimal strings so
// that they round-trip without loss, dates are "YYYY-MM-DD" and periods are
// "YYYY-MM".
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ─── People ─────────────────────────────────────────────────────────────────

type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Person *Person `json:"person"`
	Token  string  `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Person *Person `json:"person"`
	Token  string  `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	Person *Person `json:"person"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type UpdateProfileResponse struct {
	Person *Person `json:"person"`
}

type ListPeopleRequest struct{}

type ListPeopleResponse struct {
	People []*Person `json:"people"`
}

// ─── Expenses ───────────────────────────────────────────────────────────────

// Share is one giver's or taker's part of an expense.
type Share struct {
	PersonID string          `json:"person_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type Expense struct {
	ID        string          `json:"id,omitempty"`
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Reason    string          `json:"reason"`
	SplitType string          `json:"split_type,omitempty"`
	Givers    []Share         `json:"givers"`
	Takers    []Share         `json:"takers"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt int64           `json:"created_at,omitempty"`
	UpdatedAt int64           `json:"updated_at,omitempty"`
}

type CreateExpenseRequest struct {
	Expense *Expense `json:"expense"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ID string `json:"id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ID string `json:"id"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	// Period defaults to the current month.
	Period   string `json:"period,omitempty"`
	Category string `json:"category,omitempty"`
}

type ListExpensesResponse struct {
	Period   string     `json:"period"`
	Expenses []*Expense `json:"expenses"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type PayerTotal struct {
	PersonID string          `json:"person_id"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type GetSummaryRequest struct {
	Period string `json:"period,omitempty"`
}

type GetSummaryResponse struct {
	Period     string          `json:"period"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
	ByPayer    []PayerTotal    `json:"by_payer"`
}

// ─── Dues ───────────────────────────────────────────────────────────────────

// Due is a transfer that settles part of the period: From pays To.
type Due struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type GetDuesRequest struct {
	Period string `json:"period,omitempty"`
}

type GetDuesResponse struct {
	Period string `json:"period"`
	Dues   []Due  `json:"dues"`
}

type PersonStats struct {
	PersonID        string          `json:"person_id"`
	Name            string          `json:"name,omitempty"`
	Paid            decimal.Decimal `json:"paid"`
	Consumed        decimal.Decimal `json:"consumed"`
	SettledPaid     decimal.Decimal `json:"settled_paid"`
	SettledReceived decimal.Decimal `json:"settled_received"`
	SettledAmount   decimal.Decimal `json:"settled_amount"`
	Carried         decimal.Decimal `json:"carried"`
	Owes            decimal.Decimal `json:"owes"`
	Owed            decimal.Decimal `json:"owed"`
	Net             decimal.Decimal `json:"net"`
}

type GetStatsRequest struct {
	Period string `json:"period,omitempty"`
}

type GetStatsResponse struct {
	Period string         `json:"period"`
	Stats  []*PersonStats `json:"stats"`
}

type Settlement struct {
	ID        string          `json:"id"`
	Period    string          `json:"period"`
	FromID    string          `json:"from_id"`
	ToID      string          `json:"to_id"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt int64           `json:"created_at"`
}

type SettleDuesRequest struct {
	FromID string          `json:"from_id"`
	ToID   string          `json:"to_id"`
	Amount decimal.Decimal `json:"amount"`
	// Period defaults to the current month.
	Period string `json:"period,omitempty"`
	Note   string `json:"note,omitempty"`
}

type SettleDuesResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	Period string `json:"period,omitempty"`
}

type ListSettlementsResponse struct {
	Period      string        `json:"period"`
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	ID string `json:"id"`
}

type DeleteSettlementResponse struct{}

type DeleteSettlementHistoryRequest struct{}

type DeleteSettlementHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}

// ─── Rollover ───────────────────────────────────────────────────────────────

type CarryEntry struct {
	PersonID string          `json:"person_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type Rollover struct {
	ID        string       `json:"id"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Entries   []CarryEntry `json:"entries"`
	CreatedBy string       `json:"created_by"`
	CreatedAt int64        `json:"created_at"`
}

type RolloverBalancesRequest struct {
	From string `json:"from"`
	// To defaults to the month after From.
	To string `json:"to,omitempty"`
}

type RolloverBalancesResponse struct {
	Rollover *Rollover `json:"rollover"`
}

type ResetRolloverRequest struct {
	// Period is the month whose carry-forward is removed.
	Period string `json:"period"`
}

type ResetRolloverResponse struct {
	Rollover *Rollover `json:"rollover"`
}

type GetCarryForwardRequest struct {
	// Period is the month whose opening balances are returned.
	Period string `json:"period"`
}

type GetCarryForwardResponse struct {
	Rollover *Rollover `json:"rollover"`
}

// ─── Administration ─────────────────────────────────────────────────────────

type ClearDatabaseRequest struct{}

type ClearDatabaseResponse struct {
	Expenses    int64 `json:"expenses"`
	Settlements int64 `json:"settlements"`
	Rollovers   int64 `json:"rollovers"`
}

// Activity is an audit entry. Detail is the JSON payload named by Kind.
type Activity struct {
	ID      string          `json:"id"`
	Action  string          `json:"action"`
	ActorID string          `json:"actor_id"`
	At      int64           `json:"at"`
	Kind    string          `json:"kind"`
	Detail  json.RawMessage `json:"detail"`
}

type ListActivityRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ListActivityResponse struct {
	Entries []*Activity `json:"entries"`
}
