package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/internal/users"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
	"github.com/survey-app/backend/pkg/utils"
)

const (
	msgRegistered         = "Registration successful"
	msgInvalidCredentials = "Invalid credentials"
)

// UserLookup finds accounts by username for login.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Registrar creates accounts.
type Registrar interface {
	Create(ctx context.Context, in users.NewUser) (*models.User, error)
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Message  string      `json:"message,omitempty"`
	Token    string      `json:"token,omitempty"`
}

// Service registers and authenticates users.
type Service struct {
	lookup    UserLookup
	registrar Registrar
	jwt       *JWTService
}

// NewService creates an auth service.
func NewService(lookup UserLookup, registrar Registrar, jwt *JWTService) *Service {
	return &Service{lookup: lookup, registrar: registrar, jwt: jwt}
}

// Register creates a USER account with its profile.
func (s *Service) Register(ctx context.Context, username, password string, profile models.UserProfile) (*AuthResponse, error) {
	u, err := s.registrar.Create(ctx, users.NewUser{
		Username: username,
		Password: password,
		Role:     models.RoleUser,
		Profile:  profile,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResponse{ID: u.ID, Username: u.Username, Role: u.Role, Message: msgRegistered}, nil
}

// Login checks credentials and issues a token. Unknown user and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	u, err := s.lookup.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if !utils.CheckPassword(password, u.Password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	token, err := s.jwt.Generate(u)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{ID: u.ID, Username: u.Username, Role: u.Role, Token: token}, nil
}
