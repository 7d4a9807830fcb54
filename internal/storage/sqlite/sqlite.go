// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/duesbook/internal/models"
	"github.com/mmynk/duesbook/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

const dateLayout = "2006-01-02"

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	// Foreign keys are a per-connection pragma, so set them in the DSN.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing on success.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateExpense persists a new expense to the database.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = expense.CreatedAt

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, date, period, amount, category, reason, split_type, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.Date.Format(dateLayout), expense.Period().Key(), expense.Amount,
			string(expense.Category), expense.Reason, string(expense.SplitType), expense.CreatedBy,
			expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertShares(ctx, tx, expense)
	})
}

// UpdateExpense replaces an expense and its shares.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET date = ?, period = ?, amount = ?, category = ?, reason = ?, split_type = ?, updated_at = ?
			 WHERE id = ?`,
			expense.Date.Format(dateLayout), expense.Period().Key(), expense.Amount,
			string(expense.Category), expense.Reason, string(expense.SplitType), expense.UpdatedAt,
			expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.NotFound("expense", expense.ID)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear expense shares: %w", err)
		}
		return insertShares(ctx, tx, expense)
	})
}

func insertShares(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	sides := []struct {
		side   string
		shares []models.Share
	}{
		{"giver", expense.Givers},
		{"taker", expense.Takers},
	}
	for _, group := range sides {
		for i, share := range group.shares {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO expense_shares (expense_id, side, person_id, amount, position) VALUES (?, ?, ?, ?, ?)",
				expense.ID, group.side, share.PersonID, share.Amount, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s share: %w", group.side, err)
			}
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its givers and takers.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, date, amount, category, reason, split_type, created_by, created_at, updated_at
		 FROM expenses WHERE id = ?`,
		id,
	)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("expense", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadShares(ctx, []*models.Expense{expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense; its shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFound("expense", id)
	}
	return nil
}

// ListExpenses retrieves the expenses of a period, optionally by category.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter models.ExpenseFilter) ([]*models.Expense, error) {
	query := `SELECT id, date, amount, category, reason, split_type, created_by, created_at, updated_at
		 FROM expenses WHERE period = ?`
	args := []any{filter.Period.Key()}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	if err := s.loadShares(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// loadShares fills Givers and Takers for the given expenses.
func (s *SQLiteStore) loadShares(ctx context.Context, expenses []*models.Expense) error {
	for _, expense := range expenses {
		rows, err := s.db.QueryContext(ctx,
			"SELECT side, person_id, amount FROM expense_shares WHERE expense_id = ? ORDER BY side, position",
			expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get expense shares: %w", err)
		}

		for rows.Next() {
			var side string
			var share models.Share
			if err := rows.Scan(&side, &share.PersonID, &share.Amount); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan expense share: %w", err)
			}
			if side == "giver" {
				expense.Givers = append(expense.Givers, share)
			} else {
				expense.Takers = append(expense.Takers, share)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate expense shares: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var date, category, splitType string
	if err := row.Scan(&expense.ID, &date, &expense.Amount, &category, &expense.Reason, &splitType,
		&expense.CreatedBy, &expense.CreatedAt, &expense.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	expense.Date = parsed
	expense.Category = models.Category(category)
	expense.SplitType = models.SplitType(splitType)
	return expense, nil
}

// ClearLedger removes all expenses, settlements and rollovers in one transaction.
func (s *SQLiteStore) ClearLedger(ctx context.Context) (models.ClearDetail, error) {
	detail := models.ClearDetail{Scope: models.ClearLedger}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		steps := []struct {
			table string
			count *int64
		}{
			{"expenses", &detail.Expenses},
			{"settlements", &detail.Settlements},
			{"rollovers", &detail.Rollovers},
		}
		for _, step := range steps {
			res, err := tx.ExecContext(ctx, "DELETE FROM "+step.table)
			if err != nil {
				return fmt.Errorf("failed to clear %s: %w", step.table, err)
			}
			*step.count, _ = res.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return models.ClearDetail{}, err
	}
	return detail, nil
}
