// Package models defines the core domain models for duesbook.
//
// # Records
//
// The following models are persisted by the storage layer:
//   - Person: someone who pays for or benefits from expenses
//   - Expense: money spent, with weighted givers and takers
//   - Settlement: a real-world payment between two people
//   - Rollover: a period's closing balances carried into a later period
//   - Activity: an audit entry describing one mutating operation
//
// Derived views (net positions, dues, per-person stats) are not stored; they
// are recomputed from the records of a Period by package calculator.
//
// # Design Principles
//
//  1. **Exact money**: amounts are decimal.Decimal, never float64
//  2. **Avoid circular references**: Use ID strings instead of pointers for relationships
//  3. **Records are plain data**: validation lives in package calculator
package models
