package middleware

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/duesbook/internal/auth"
	"github.com/mmynk/duesbook/internal/models"
)

type ping struct{}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer a b", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := bearerToken(tt.header)
			if ok != tt.ok || token != tt.token {
				t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, token, ok, tt.token, tt.ok)
			}
		})
	}
}

func TestRequireUserAndAdmin(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		userCode  connect.Code
		adminCode connect.Code
	}{
		{"anonymous", context.Background(), connect.CodeUnauthenticated, connect.CodeUnauthenticated},
		{"user", WithIdentity(context.Background(), "u1", "u1@example.com", models.RoleUser), 0, connect.CodePermissionDenied},
		{"admin", WithIdentity(context.Background(), "a1", "a1@example.com", models.RoleAdmin), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RequireUser(tt.ctx)
			if got := codeOf(err); got != tt.userCode {
				t.Errorf("RequireUser code = %v, want %v", got, tt.userCode)
			}
			_, err = RequireAdmin(tt.ctx)
			if got := codeOf(err); got != tt.adminCode {
				t.Errorf("RequireAdmin code = %v, want %v", got, tt.adminCode)
			}
		})
	}
}

func codeOf(err error) connect.Code {
	if err == nil {
		return 0
	}
	return connect.CodeOf(err)
}

// capture returns a UnaryFunc that records the context it was called with.
func capture(got *context.Context) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		*got = ctx
		return connect.NewResponse(&ping{}), nil
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("middleware-test-secret-01234", time.Hour)
	person := &models.Person{ID: "p1", Email: "p1@example.com", Role: models.RoleAdmin}
	token, err := jwtManager.Generate(person)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
		code   connect.Code
	}{
		{"missing header", "", connect.CodeUnauthenticated},
		{"malformed header", "Token " + token, connect.CodeUnauthenticated},
		{"bad token", "Bearer not-a-jwt", connect.CodeUnauthenticated},
		{"valid token", "Bearer " + token, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got context.Context
			req := connect.NewRequest(&ping{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := RequireAuth(jwtManager)(capture(&got))(context.Background(), req)
			if code := codeOf(err); code != tt.code {
				t.Fatalf("code = %v, want %v (%v)", code, tt.code, err)
			}
			if tt.code != 0 {
				if got != nil {
					t.Error("handler should not run without a valid token")
				}
				return
			}
			if GetUserID(got) != "p1" || GetEmail(got) != "p1@example.com" || GetRole(got) != models.RoleAdmin {
				t.Errorf("identity not propagated: %q %q %q", GetUserID(got), GetEmail(got), GetRole(got))
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("middleware-test-secret-01234", time.Hour)
	token, err := jwtManager.Generate(&models.Person{ID: "p2", Email: "p2@example.com", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
		userID string
	}{
		{"anonymous", "", ""},
		{"invalid token ignored", "Bearer garbage", ""},
		{"valid token", "Bearer " + token, "p2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got context.Context
			req := connect.NewRequest(&ping{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			if _, err := OptionalAuth(jwtManager)(capture(&got))(context.Background(), req); err != nil {
				t.Fatalf("OptionalAuth returned error: %v", err)
			}
			if GetUserID(got) != tt.userID {
				t.Errorf("user id = %q, want %q", GetUserID(got), tt.userID)
			}
		})
	}
}
