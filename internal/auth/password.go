package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/duesbook/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// PersonStorage is the part of the store the authenticator needs.
type PersonStorage interface {
	CreatePerson(ctx context.Context, person *models.Person) error
	GetPersonByEmail(ctx context.Context, email string) (*models.Person, error)
	GetPerson(ctx context.Context, id string) (*models.Person, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage PersonStorage
	cost    int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage PersonStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a person with the user role and a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, name, credential string) (*models.Person, error) {
	return a.RegisterWithRole(ctx, email, name, credential, models.RoleUser)
}

// RegisterWithRole creates a person with the given role. Used by the
// adduser command to bootstrap admins.
func (a *PasswordAuthenticator) RegisterWithRole(ctx context.Context, email, name, credential string, role models.Role) (*models.Person, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(strings.ToLower(email))

	// Check if email already exists
	existing, err := a.storage.GetPersonByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	person := models.NewPerson(email, name, string(hashedPassword), role)
	if err := a.storage.CreatePerson(ctx, person); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return person, nil
}

// Authenticate verifies the email and password, returning the person if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.Person, error) {
	person, err := a.storage.GetPersonByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return person, nil
}
