package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/duesbook/internal/models"
)

// CreatePerson inserts a new person into the database.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	if person.CreatedAt == 0 {
		person.CreatedAt = time.Now().Unix()
	}
	if person.Role == "" {
		person.Role = models.RoleUser
	}

	query := `
		INSERT INTO people (id, name, email, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		person.ID,
		person.Name,
		person.Email,
		string(person.Role),
		person.PasswordHash,
		person.CreatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: people.email") {
			return models.Conflict("email already registered: %s", person.Email)
		}
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

// GetPersonByEmail retrieves a person by their email address.
func (s *SQLiteStore) GetPersonByEmail(ctx context.Context, email string) (*models.Person, error) {
	query := `
		SELECT id, name, email, role, password_hash, created_at
		FROM people
		WHERE email = ?
	`

	person, err := scanPerson(s.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, models.NotFound("person", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person by email: %w", err)
	}

	return person, nil
}

// GetPerson retrieves a person by their ID.
func (s *SQLiteStore) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	query := `
		SELECT id, name, email, role, password_hash, created_at
		FROM people
		WHERE id = ?
	`

	person, err := scanPerson(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.NotFound("person", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	return person, nil
}

// ListPeople retrieves everyone, ordered by name.
func (s *SQLiteStore) ListPeople(ctx context.Context) ([]*models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, role, password_hash, created_at
		 FROM people ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []*models.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return people, nil
}

// UpdatePersonName changes the display name of a person.
func (s *SQLiteStore) UpdatePersonName(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE people SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFound("person", id)
	}

	return nil
}

func scanPerson(row rowScanner) (*models.Person, error) {
	person := &models.Person{}
	var role string
	if err := row.Scan(
		&person.ID,
		&person.Name,
		&person.Email,
		&role,
		&person.PasswordHash,
		&person.CreatedAt,
	); err != nil {
		return nil, err
	}
	person.Role = models.Role(role)
	return person, nil
}
