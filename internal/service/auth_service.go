package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/duesbook/internal/auth"
	"github.com/mmynk/duesbook/internal/middleware"
	"github.com/mmynk/duesbook/internal/storage"
	"github.com/mmynk/duesbook/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	people        storage.PersonStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, people storage.PersonStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		people:        people,
		logger:        logger,
	}
}

// Register creates a new account with the user role.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	// Validate input
	if strings.TrimSpace(req.Msg.Email) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}
	if strings.TrimSpace(req.Msg.Name) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name is required"))
	}

	person, err := s.authenticator.Register(ctx, req.Msg.Email, strings.TrimSpace(req.Msg.Name), req.Msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		if errors.Is(err, auth.ErrEmailExists) {
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		}
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(person)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", person.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", person.ID, "email", person.Email)
	return connect.NewResponse(&api.RegisterResponse{
		Person: toAPIPerson(person),
		Token:  token,
	}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	person, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(person)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", person.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", person.ID, "email", person.Email)
	return connect.NewResponse(&api.LoginResponse{
		Person: toAPIPerson(person),
		Token:  token,
	}), nil
}

// GetCurrentUser returns the authenticated caller's account.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	person, err := s.people.GetPerson(ctx, userID)
	if err != nil {
		// A valid token for a person that no longer exists.
		return nil, connectError("GetCurrentUser", err)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{Person: toAPIPerson(person)}), nil
}

// UpdateProfile changes the caller's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	userID, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name is required"))
	}

	if err := s.people.UpdatePersonName(ctx, userID, name); err != nil {
		return nil, connectError("UpdateProfile", err)
	}
	person, err := s.people.GetPerson(ctx, userID)
	if err != nil {
		return nil, connectError("UpdateProfile", err)
	}

	s.logger.Info("Profile updated", "user_id", person.ID)
	return connect.NewResponse(&api.UpdateProfileResponse{Person: toAPIPerson(person)}), nil
}

// ListPeople returns everyone who can take part in expenses.
func (s *AuthService) ListPeople(ctx context.Context, req *connect.Request[api.ListPeopleRequest]) (*connect.Response[api.ListPeopleResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	people, err := s.people.ListPeople(ctx)
	if err != nil {
		return nil, connectError("ListPeople", err)
	}

	out := make([]*api.Person, len(people))
	for i, p := range people {
		out[i] = toAPIPerson(p)
	}
	return connect.NewResponse(&api.ListPeopleResponse{People: out}), nil
}
