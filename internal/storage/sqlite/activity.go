package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/duesbook/internal/models"
)

// AppendActivity writes an audit entry with its detail encoded as JSON.
func (s *SQLiteStore) AppendActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.At == 0 {
		activity.At = time.Now().Unix()
	}

	kind, payload, err := models.EncodeDetail(activity.Detail)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO activity (id, action, actor_id, at, kind, detail) VALUES (?, ?, ?, ?, ?, ?)",
		activity.ID, string(activity.Action), activity.ActorID, activity.At, string(kind), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivity retrieves the latest entries, newest first.
func (s *SQLiteStore) ListActivity(ctx context.Context, limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, action, actor_id, at, kind, detail FROM activity ORDER BY at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []*models.Activity
	for rows.Next() {
		var (
			entry        models.Activity
			action, kind string
			payload      string
		)
		if err := rows.Scan(&entry.ID, &action, &entry.ActorID, &entry.At, &kind, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		entry.Action = models.Action(action)
		entry.Detail, err = models.DecodeDetail(models.DetailKind(kind), []byte(payload))
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}

	return entries, nil
}
