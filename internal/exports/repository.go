package exports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/database"
)

// Repository handles response_exports persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an exports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateExport inserts a pending export.
func (r *Repository) CreateExport(ctx context.Context, e *models.ResponseExport) error {
	const q = `INSERT INTO response_exports (id, survey_id, requested_by, status)
		VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.SurveyID, e.RequestedBy, string(e.Status)).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// GetExport returns an export by ID.
func (r *Repository) GetExport(ctx context.Context, id uuid.UUID) (*models.ResponseExport, error) {
	const q = `SELECT id, survey_id, COALESCE(requested_by, 0), status, COALESCE(s3_key,''), row_count,
		COALESCE(error,''), created_at, updated_at
		FROM response_exports WHERE id = $1`
	var e models.ResponseExport
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.SurveyID, &e.RequestedBy, &e.Status, &e.S3Key, &e.RowCount,
		&e.Error, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, database.Translate(err)
	}
	return &e, nil
}

// CompleteExport stores the object key and row count.
func (r *Repository) CompleteExport(ctx context.Context, id uuid.UUID, key string, rows int) error {
	const q = `UPDATE response_exports SET status = 'completed', s3_key = $2, row_count = $3, error = NULL, updated_at = NOW()
		WHERE id = $1`
	return r.exec(ctx, q, id, key, rows)
}

// FailExport records the failure reason.
func (r *Repository) FailExport(ctx context.Context, id uuid.UUID, reason string) error {
	const q = `UPDATE response_exports SET status = 'failed', error = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, q, id, reason)
}

func (r *Repository) exec(ctx context.Context, q string, args ...any) error {
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}
