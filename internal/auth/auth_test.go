package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/internal/users"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
	"github.com/survey-app/backend/pkg/utils"
)

type stubUsers struct {
	byName  map[string]*models.User
	created []users.NewUser
}

func (s *stubUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := s.byName[username]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func (s *stubUsers) Create(_ context.Context, in users.NewUser) (*models.User, error) {
	if _, ok := s.byName[in.Username]; ok {
		return nil, apperr.BadRequest("Username already exists")
	}
	s.created = append(s.created, in)
	u := &models.User{ID: int64(len(s.byName) + 1), Username: in.Username, Role: in.Role}
	s.byName[in.Username] = u
	return u, nil
}

func newStubUsers(t *testing.T) *stubUsers {
	hash, err := utils.HashPassword("admin123")
	require.NoError(t, err)
	return &stubUsers{byName: map[string]*models.User{
		"admin": {ID: 1, Username: "admin", Password: hash, Role: models.RoleAdmin},
	}}
}

func TestRegisterCreatesUserRole(t *testing.T) {
	store := newStubUsers(t)
	svc := NewService(store, store, NewJWTService("secret", 1))

	res, err := svc.Register(context.Background(), "newbie", "secret1", models.UserProfile{FullName: "New Bie"})
	require.NoError(t, err)
	assert.Equal(t, "newbie", res.Username)
	assert.Equal(t, models.RoleUser, res.Role)
	assert.Equal(t, "Registration successful", res.Message)
	assert.Empty(t, res.Token)
	require.Len(t, store.created, 1)
	assert.Equal(t, "New Bie", store.created[0].Profile.FullName)

	_, err = svc.Register(context.Background(), "newbie", "secret1", models.UserProfile{})
	assert.True(t, apperr.Is(err, apperr.CodeBadRequest))
}

func TestLogin(t *testing.T) {
	store := newStubUsers(t)
	jwtSvc := NewJWTService("secret", 1)
	svc := NewService(store, store, jwtSvc)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))

	_, err = svc.Login(ctx, "ghost", "admin123")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))

	res, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := jwtSvc.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := NewJWTService("secret", 1)
	u := &models.User{ID: 7, Username: "u", Role: models.RoleUser}

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.Generate(u)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.Validate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService("other-secret", 1)
	foreign, err := other.Generate(u)
	require.NoError(t, err)
	_, err = svc.Validate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7, Role: models.RoleUser})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
