package categories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/survey-app/backend/internal/models"
)

// Repository handles survey category persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a categories repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all categories ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.SurveyCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description,'') FROM survey_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.SurveyCategory
	for rows.Next() {
		var c models.SurveyCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Create inserts a category.
func (r *Repository) Create(ctx context.Context, c *models.SurveyCategory) error {
	const q = `INSERT INTO survey_categories (name, description) VALUES ($1, NULLIF($2,'')) RETURNING id`
	return r.pool.QueryRow(ctx, q, c.Name, c.Description).Scan(&c.ID)
}
