package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/duesbook/internal/models"
)

// CreateRollover writes the rollover header and its entries atomically.
// The existence check and the insert share one transaction, so two
// concurrent rollovers of the same period cannot both succeed.
func (s *SQLiteStore) CreateRollover(ctx context.Context, rollover *models.Rollover) error {
	if rollover.ID == "" {
		rollover.ID = uuid.New().String()
	}
	if rollover.CreatedAt == 0 {
		rollover.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var existingFrom, existingTo string
		err := tx.QueryRowContext(ctx,
			"SELECT from_period, to_period FROM rollovers WHERE from_period = ? OR to_period = ? LIMIT 1",
			rollover.From.Key(), rollover.To.Key(),
		).Scan(&existingFrom, &existingTo)
		if err == nil {
			return models.Conflict("balances already rolled over from %s to %s", existingFrom, existingTo)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check existing rollover: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO rollovers (id, from_period, to_period, created_at, created_by) VALUES (?, ?, ?, ?, ?)",
			rollover.ID, rollover.From.Key(), rollover.To.Key(), rollover.CreatedAt, rollover.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rollover: %w", err)
		}

		for _, entry := range rollover.Entries {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO rollover_entries (rollover_id, person_id, amount) VALUES (?, ?, ?)",
				rollover.ID, entry.PersonID, entry.Amount,
			)
			if err != nil {
				return fmt.Errorf("failed to insert rollover entry: %w", err)
			}
		}
		return nil
	})
}

// GetRolloverInto retrieves the rollover that carries balances into period.
func (s *SQLiteStore) GetRolloverInto(ctx context.Context, period models.Period) (*models.Rollover, error) {
	return s.getRolloverInto(ctx, s.db, period)
}

// DeleteRolloverInto removes the carry-forward into period.
func (s *SQLiteStore) DeleteRolloverInto(ctx context.Context, period models.Period) (*models.Rollover, error) {
	var rollover *models.Rollover
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		rollover, err = s.getRolloverInto(ctx, tx, period)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM rollovers WHERE id = ?", rollover.ID); err != nil {
			return fmt.Errorf("failed to delete rollover: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rollover, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStore) getRolloverInto(ctx context.Context, q querier, period models.Period) (*models.Rollover, error) {
	rollover := &models.Rollover{To: period}
	var from string
	err := q.QueryRowContext(ctx,
		"SELECT id, from_period, created_at, created_by FROM rollovers WHERE to_period = ?",
		period.Key(),
	).Scan(&rollover.ID, &from, &rollover.CreatedAt, &rollover.CreatedBy)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("rollover into", period.Key())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rollover: %w", err)
	}
	if rollover.From, err = parsePeriod(from); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		"SELECT person_id, amount FROM rollover_entries WHERE rollover_id = ? ORDER BY person_id",
		rollover.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get rollover entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.CarryEntry
		if err := rows.Scan(&entry.PersonID, &entry.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan rollover entry: %w", err)
		}
		rollover.Entries = append(rollover.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rollover entries: %w", err)
	}

	return rollover, nil
}
