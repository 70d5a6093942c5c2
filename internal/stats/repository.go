package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/survey-app/backend/internal/models"
)

// Repository runs the aggregate queries behind the statistics engine.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a stats repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CountSurveys returns the number of surveys.
func (r *Repository) CountSurveys(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM surveys`).Scan(&n)
	return n, err
}

// CountUserResponses returns the number of responses a user has.
func (r *Repository) CountUserResponses(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM survey_responses WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// ListUserActivity returns the user's responses with survey titles.
func (r *Repository) ListUserActivity(ctx context.Context, userID int64) ([]models.ResponseActivity, error) {
	rows, err := r.pool.Query(ctx, `SELECT sr.id, sr.survey_id, s.title, sr.completed_at
		FROM survey_responses sr
		JOIN surveys s ON s.id = sr.survey_id
		WHERE sr.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ResponseActivity
	for rows.Next() {
		var a models.ResponseActivity
		if err := rows.Scan(&a.ResponseID, &a.SurveyID, &a.SurveyTitle, &a.CompletedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListResponseTotals returns total and completed response counts for every user.
func (r *Repository) ListResponseTotals(ctx context.Context) ([]models.ResponseTotals, error) {
	rows, err := r.pool.Query(ctx, `SELECT u.id, u.username, COUNT(sr.id), COUNT(sr.completed_at)
		FROM users u
		LEFT JOIN survey_responses sr ON sr.user_id = u.id
		GROUP BY u.id, u.username
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ResponseTotals
	for rows.Next() {
		var t models.ResponseTotals
		if err := rows.Scan(&t.UserID, &t.Username, &t.Total, &t.Completed); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// CountByCategory groups responses by their survey's category name.
func (r *Repository) CountByCategory(ctx context.Context) ([]models.CategoryStats, error) {
	rows, err := r.pool.Query(ctx, `SELECT c.name, COUNT(sr.id)
		FROM survey_responses sr
		JOIN surveys s ON s.id = sr.survey_id
		JOIN survey_categories c ON c.id = s.category_id
		GROUP BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.CategoryStats
	for rows.Next() {
		var c models.CategoryStats
		if err := rows.Scan(&c.CategoryName, &c.ResponseCount); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
