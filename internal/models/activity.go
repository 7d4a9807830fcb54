package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Action is the verb of an activity entry.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionSettle   Action = "settle"
	ActionRollover Action = "rollover"
	ActionReset    Action = "reset"
	ActionClear    Action = "clear"
)

// DetailKind names the concrete payload type carried by an Activity.
type DetailKind string

const (
	DetailExpense    DetailKind = "expense"
	DetailSettlement DetailKind = "settlement"
	DetailRollover   DetailKind = "rollover"
	DetailClear      DetailKind = "clear"
)

// Detail is the payload of an activity entry. The set of implementations is
// closed: ExpenseDetail, SettlementDetail, RolloverDetail and ClearDetail.
type Detail interface {
	Kind() DetailKind
	isDetail()
}

// ExpenseDetail describes an expense that was created, updated or deleted.
type ExpenseDetail struct {
	ExpenseID string          `json:"expense_id"`
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Category  Category        `json:"category"`
	Reason    string          `json:"reason"`
}

// SettlementDetail describes a settlement that was recorded or deleted.
type SettlementDetail struct {
	SettlementID string          `json:"settlement_id"`
	FromID       string          `json:"from_id"`
	ToID         string          `json:"to_id"`
	Amount       decimal.Decimal `json:"amount"`
	Period       string          `json:"period"`
}

// RolloverDetail describes a rollover that was applied or reset.
type RolloverDetail struct {
	RolloverID string `json:"rollover_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	People     int    `json:"people"`
}

// ClearScope tells which records a bulk clear removed.
type ClearScope string

const (
	ClearLedger      ClearScope = "ledger"
	ClearSettlements ClearScope = "settlements"
)

// ClearDetail describes a bulk delete and how many rows it removed.
type ClearDetail struct {
	Scope       ClearScope `json:"scope"`
	Expenses    int64      `json:"expenses"`
	Settlements int64      `json:"settlements"`
	Rollovers   int64      `json:"rollovers"`
}

func (ExpenseDetail) Kind() DetailKind    { return DetailExpense }
func (SettlementDetail) Kind() DetailKind { return DetailSettlement }
func (RolloverDetail) Kind() DetailKind   { return DetailRollover }
func (ClearDetail) Kind() DetailKind      { return DetailClear }

func (ExpenseDetail) isDetail()    {}
func (SettlementDetail) isDetail() {}
func (RolloverDetail) isDetail()   {}
func (ClearDetail) isDetail()      {}

// Activity is one entry of the audit log.
type Activity struct {
	ID      string
	Action  Action
	ActorID string
	At      int64
	Detail  Detail
}

// EncodeDetail serializes a detail payload for storage or transport.
func EncodeDetail(d Detail) (DetailKind, []byte, error) {
	if d == nil {
		return "", nil, fmt.Errorf("activity detail is nil")
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s detail: %w", d.Kind(), err)
	}
	return d.Kind(), payload, nil
}

// DecodeDetail restores the concrete payload type named by kind.
func DecodeDetail(kind DetailKind, payload []byte) (Detail, error) {
	var (
		d   Detail
		err error
	)
	switch kind {
	case DetailExpense:
		var v ExpenseDetail
		err = json.Unmarshal(payload, &v)
		d = v
	case DetailSettlement:
		var v SettlementDetail
		err = json.Unmarshal(payload, &v)
		d = v
	case DetailRollover:
		var v RolloverDetail
		err = json.Unmarshal(payload, &v)
		d = v
	case DetailClear:
		var v ClearDetail
		err = json.Unmarshal(payload, &v)
		d = v
	default:
		return nil, fmt.Errorf("unknown activity detail kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s detail: %w", kind, err)
	}
	return d, nil
}
