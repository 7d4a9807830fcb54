package models

import (
	"time"

	"github.com/google/uuid"
)

// Role controls which administrative operations a person may perform.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Person represents someone taking part in shared expenses.
// A person doubles as a login account; the ledger only cares about ID and Name.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// Name is the display name.
	Name string

	// Email is the login address (unique).
	Email string

	// Role is either RoleUser or RoleAdmin.
	Role Role

	// PasswordHash is the bcrypt hash of the person's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the person was created.
	CreatedAt int64
}

// NewPerson creates a person with a fresh ID and creation time.
func NewPerson(email, name, passwordHash string, role Role) *Person {
	return &Person{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}

// IsAdmin reports whether the person holds the admin role.
func (p *Person) IsAdmin() bool {
	return p.Role == RoleAdmin
}
