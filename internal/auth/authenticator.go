package auth

import (
	"context"

	"github.com/mmynk/duesbook/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new person with the given email and credential.
	// Self-registered people always get the user role.
	Register(ctx context.Context, email, name, credential string) (*models.Person, error)

	// Authenticate verifies the credentials and returns the person if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.Person, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
