package sqlitestore

import (
	"context"

	"gorm.io/gorm"

	"github.com/survey-app/backend/internal/models"
)

// Stats runs the aggregate queries behind the statistics engine.
type Stats struct {
	db *gorm.DB
}

// CountSurveys returns the number of surveys.
func (s *Stats) CountSurveys(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&surveyRow{}).Count(&n).Error
	return int(n), err
}

// CountUserResponses returns the number of responses a user has.
func (s *Stats) CountUserResponses(ctx context.Context, userID int64) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&responseRow{}).Where("user_id = ?", userID).Count(&n).Error
	return int(n), err
}

// ListUserActivity returns the user's responses with survey titles.
func (s *Stats) ListUserActivity(ctx context.Context, userID int64) ([]models.ResponseActivity, error) {
	var list []models.ResponseActivity
	err := s.db.WithContext(ctx).Table("survey_responses sr").
		Select("sr.id AS response_id, sr.survey_id AS survey_id, s.title AS survey_title, sr.completed_at AS completed_at").
		Joins("JOIN surveys s ON s.id = sr.survey_id").
		Where("sr.user_id = ?", userID).
		Scan(&list).Error
	return list, err
}

// ListResponseTotals returns total and completed response counts for every user.
func (s *Stats) ListResponseTotals(ctx context.Context) ([]models.ResponseTotals, error) {
	var list []models.ResponseTotals
	err := s.db.WithContext(ctx).Table("users u").
		Select("u.id AS user_id, u.username AS username, COUNT(sr.id) AS total, COUNT(sr.completed_at) AS completed").
		Joins("LEFT JOIN survey_responses sr ON sr.user_id = u.id").
		Group("u.id, u.username").
		Order("u.id").
		Scan(&list).Error
	return list, err
}

// CountByCategory groups responses by their survey's category name.
func (s *Stats) CountByCategory(ctx context.Context) ([]models.CategoryStats, error) {
	var list []models.CategoryStats
	err := s.db.WithContext(ctx).Table("survey_responses sr").
		Select("c.name AS category_name, COUNT(sr.id) AS response_count").
		Joins("JOIN surveys s ON s.id = sr.survey_id").
		Joins("JOIN survey_categories c ON c.id = s.category_id").
		Group("c.name").
		Scan(&list).Error
	return list, err
}
