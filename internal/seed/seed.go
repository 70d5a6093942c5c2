// Package seed creates the default accounts and survey categories on an empty database.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/internal/users"
	"github.com/survey-app/backend/pkg/apperr"
)

// Accounts creates users.
type Accounts interface {
	Create(ctx context.Context, in users.NewUser) (*models.User, error)
}

// Categories lists and creates survey categories.
type Categories interface {
	List(ctx context.Context) ([]models.SurveyCategory, error)
	Create(ctx context.Context, c *models.SurveyCategory) error
}

// DefaultUsers are created when missing.
var DefaultUsers = []users.NewUser{
	{
		Username: "admin",
		Password: "admin123",
		Role:     models.RoleAdmin,
		Profile:  models.UserProfile{FullName: "Administrator", Email: "admin@example.com"},
	},
	{
		Username: "user",
		Password: "user123",
		Role:     models.RoleUser,
		Profile:  models.UserProfile{FullName: "Regular User", Email: "user@example.com"},
	},
}

// DefaultCategories are created when no category with the same name exists.
var DefaultCategories = []models.SurveyCategory{
	{Name: "Pengetahuan Umum", Description: "Survei pengetahuan umum"},
	{Name: "Sejarah", Description: "Survei tentang sejarah"},
	{Name: "Matematika", Description: "Survei matematika"},
	{Name: "Ekonomi", Description: "Survei ekonomi"},
	{Name: "Trivia", Description: "Survei trivia"},
}

// Run creates missing default users and categories. Running it again changes nothing.
func Run(ctx context.Context, accounts Accounts, categories Categories, logger *zap.Logger) error {
	for _, u := range DefaultUsers {
		_, err := accounts.Create(ctx, u)
		switch {
		case err == nil:
			logger.Info("seeded user", zap.String("username", u.Username), zap.String("role", string(u.Role)))
		case apperr.Is(err, apperr.CodeBadRequest):
			// already present
		default:
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	existing, err := categories.List(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Name] = true
	}
	for _, c := range DefaultCategories {
		if have[c.Name] {
			continue
		}
		cat := c
		if err := categories.Create(ctx, &cat); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		logger.Info("seeded category", zap.String("name", c.Name))
	}
	return nil
}
