package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/duesbook/internal/models"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	var note interface{} = nil
	if settlement.Note != "" {
		note = settlement.Note
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, period, from_id, to_id, amount, created_at, created_by, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.Period.Key(), settlement.FromID, settlement.ToID,
		settlement.Amount, settlement.CreatedAt, settlement.CreatedBy, note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, period, from_id, to_id, amount, created_at, created_by, note
		 FROM settlements WHERE id = ?`,
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return settlement, nil
}

// ListSettlements retrieves all settlements recorded against a period.
func (s *SQLiteStore) ListSettlements(ctx context.Context, period models.Period) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, period, from_id, to_id, amount, created_at, created_by, note
		 FROM settlements WHERE period = ? ORDER BY created_at DESC, id`,
		period.Key(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFound("settlement", settlementID)
	}

	return nil
}

// DeleteAllSettlements removes the whole settlement history.
func (s *SQLiteStore) DeleteAllSettlements(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements")
	if err != nil {
		return 0, fmt.Errorf("failed to delete settlements: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var period string
	var note sql.NullString

	if err := row.Scan(&settlement.ID, &period, &settlement.FromID, &settlement.ToID,
		&settlement.Amount, &settlement.CreatedAt, &settlement.CreatedBy, &note); err != nil {
		return nil, err
	}

	p, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	settlement.Period = p
	if note.Valid {
		settlement.Note = note.String
	}

	return settlement, nil
}

// parsePeriod reverses models.Period.Key.
func parsePeriod(key string) (models.Period, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return models.Period{}, fmt.Errorf("invalid stored period %q: %w", key, err)
	}
	return models.PeriodOf(t), nil
}
