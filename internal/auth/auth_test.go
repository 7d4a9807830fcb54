package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/duesbook/internal/models"
)

type memoryPeople struct {
	mu      sync.Mutex
	byID    map[string]*models.Person
	byEmail map[string]*models.Person
}

func newMemoryPeople() *memoryPeople {
	return &memoryPeople{byID: map[string]*models.Person{}, byEmail: map[string]*models.Person{}}
}

func (m *memoryPeople) CreatePerson(_ context.Context, p *models.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[p.Email]; ok {
		return models.Conflict("email already registered: %s", p.Email)
	}
	m.byID[p.ID] = p
	m.byEmail[p.Email] = p
	return nil
}

func (m *memoryPeople) GetPersonByEmail(_ context.Context, email string) (*models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byEmail[email]; ok {
		return p, nil
	}
	return nil, models.NotFound("person", email)
}

func (m *memoryPeople) GetPerson(_ context.Context, id string) (*models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, models.NotFound("person", id)
}

func newTestAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(newMemoryPeople())
	a.cost = bcrypt.MinCost
	return a
}

func TestPasswordAuthenticator_Register(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	person, err := a.Register(ctx, " Alice@Example.com ", "Alice", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if person.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", person.Email)
	}
	if person.Role != models.RoleUser {
		t.Errorf("role = %q, want user", person.Role)
	}
	if person.PasswordHash == "correct-horse" {
		t.Error("password stored in clear text")
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"duplicate email", "alice@example.com", "another-secret", ErrEmailExists},
		{"weak password", "bob@example.com", "short", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, "Someone", tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPasswordAuthenticator_RegisterWithRole(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	admin, err := a.RegisterWithRole(ctx, "root@example.com", "Root", "administrator", models.RoleAdmin)
	if err != nil {
		t.Fatalf("RegisterWithRole failed: %v", err)
	}
	if !admin.IsAdmin() {
		t.Error("expected admin role")
	}

	if _, err := a.RegisterWithRole(ctx, "x@example.com", "X", "password123", "owner"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestPasswordAuthenticator_Authenticate(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	registered, err := a.Register(ctx, "carol@example.com", "Carol", "open-sesame")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	person, err := a.Authenticate(ctx, "CAROL@example.com", "open-sesame")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if person.ID != registered.ID {
		t.Errorf("authenticated %s, want %s", person.ID, registered.ID)
	}

	if _, err := a.Authenticate(ctx, "carol@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "open-sesame"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret-key-0123456789", time.Hour)
	person := &models.Person{ID: "p-1", Email: "dana@example.com", Role: models.RoleAdmin}

	token, err := manager.Generate(person)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "p-1" || claims.Email != "dana@example.com" || claims.Role != models.RoleAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret-key-9876543210", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("test-secret-key-0123456789", -time.Minute)
		old, err := expired.Generate(person)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(old); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
