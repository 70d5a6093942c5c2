package users

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
	"github.com/survey-app/backend/pkg/utils"
)

const (
	msgUserNotFound   = "User not found"
	msgUsernameTaken  = "Username already exists"
	msgCannotDemote   = "Cannot demote admin user"
	msgCannotDelete   = "Cannot delete admin user"
	msgInvalidRole    = "Invalid role"
	msgUsernameNeeded = "Username is required"
)

// Store is the persistence the user service needs.
type Store interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	Create(ctx context.Context, u *models.User, p *models.UserProfile) error
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
	ListManagement(ctx context.Context) ([]models.UserManagement, error)
	ListProfileSummaries(ctx context.Context) ([]models.UserProfileSummary, error)
}

// NewUser is the input for creating an account.
type NewUser struct {
	Username string
	Password string
	Role     models.Role
	Profile  models.UserProfile
}

// UpdateUser is the admin edit of an account.
type UpdateUser struct {
	Username string
	Role     string
}

// Service implements user and admin management rules.
type Service struct {
	store       Store
	hash        func(string) (string, error)
	leaderboard LeaderboardRefresher
	logger      *zap.Logger
}

// NewService creates a user service.
func NewService(store Store) *Service {
	return &Service{store: store, hash: utils.HashPassword}
}

// LeaderboardRefresher recomputes the cached leaderboard from stored responses.
type LeaderboardRefresher interface {
	RebuildCache(ctx context.Context) error
}

// SetLeaderboard sets the leaderboard refreshed after deletes remove responses.
func (s *Service) SetLeaderboard(r LeaderboardRefresher, logger *zap.Logger) {
	s.leaderboard = r
	s.logger = logger
}

func (s *Service) refreshLeaderboard(ctx context.Context, field zap.Field) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.RebuildCache(ctx); err != nil && s.logger != nil {
		s.logger.Warn("leaderboard refresh failed", field, zap.Error(err))
	}
}

// Create registers a new user with its profile. Usernames are unique.
func (s *Service) Create(ctx context.Context, in NewUser) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperr.BadRequest(msgUsernameNeeded)
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if _, err := models.ParseRole(string(role)); err != nil {
		return nil, apperr.BadRequest(msgInvalidRole)
	}

	if err := s.ensureUsernameFree(ctx, username); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Username: username, Password: hash, Role: role}
	p := in.Profile
	if err := s.store.Create(ctx, u, &p); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.BadRequest(msgUsernameTaken)
		}
		return nil, err
	}
	return u, nil
}

// Get returns the public view of a user including the profile.
func (s *Service) Get(ctx context.Context, id int64) (*models.UserPublic, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := u.ToPublic()
	p, err := s.store.GetProfile(ctx, id)
	switch {
	case err == nil:
		pub.Profile = p
	case !errors.Is(err, database.ErrNotFound):
		return nil, err
	}
	return &pub, nil
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]models.UserPublic, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserPublic, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToPublic())
	}
	return out, nil
}

// ListManagement returns every user with the number of surveys completed.
func (s *Service) ListManagement(ctx context.Context) ([]models.UserManagement, error) {
	return s.store.ListManagement(ctx)
}

// ListProfiles returns every profile with activity: completed count and last completion time.
func (s *Service) ListProfiles(ctx context.Context) ([]models.UserProfileSummary, error) {
	return s.store.ListProfileSummaries(ctx)
}

// Update changes username and role. Admins cannot be demoted; usernames stay unique.
func (s *Service) Update(ctx context.Context, id int64, in UpdateUser) (*models.UserManagement, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, apperr.BadRequest(msgInvalidRole)
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperr.BadRequest(msgUsernameNeeded)
	}

	if username != u.Username {
		if err := s.ensureUsernameFree(ctx, username); err != nil {
			return nil, err
		}
	}
	if u.Role.IsAdmin() && !role.IsAdmin() {
		return nil, apperr.BadRequest(msgCannotDemote)
	}

	u.Username = username
	u.Role = role
	if err := s.store.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, apperr.BadRequest(msgUsernameTaken)
		case errors.Is(err, database.ErrNotFound):
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, err
	}

	all, err := s.store.ListManagement(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return &models.UserManagement{ID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// Delete removes a non-admin user.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if u.Role.IsAdmin() {
		return apperr.BadRequest(msgCannotDelete)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return err
	}
	s.refreshLeaderboard(ctx, zap.Int64("user_id", id))
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.store.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return apperr.BadRequest(msgUsernameTaken)
	case errors.Is(err, database.ErrNotFound):
		return nil
	}
	return err
}
