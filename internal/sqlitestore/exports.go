package sqlitestore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/database"
)

// Exports persists CSV export jobs.
type Exports struct {
	db *gorm.DB
}

// CreateExport inserts a pending export.
func (e *Exports) CreateExport(ctx context.Context, ex *models.ResponseExport) error {
	row := exportRow{ID: ex.ID, SurveyID: ex.SurveyID, Status: string(ex.Status)}
	if ex.RequestedBy != 0 {
		by := ex.RequestedBy
		row.RequestedBy = &by
	}
	if err := e.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	ex.CreatedAt, ex.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

// GetExport returns an export by ID.
func (e *Exports) GetExport(ctx context.Context, id uuid.UUID) (*models.ResponseExport, error) {
	var row exportRow
	if err := e.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	ex := &models.ResponseExport{
		ID:        row.ID,
		SurveyID:  row.SurveyID,
		Status:    models.ExportStatus(row.Status),
		S3Key:     row.S3Key,
		RowCount:  row.RowCount,
		Error:     row.Error,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.RequestedBy != nil {
		ex.RequestedBy = *row.RequestedBy
	}
	return ex, nil
}

// CompleteExport stores the object key and row count.
func (e *Exports) CompleteExport(ctx context.Context, id uuid.UUID, key string, rows int) error {
	return e.update(ctx, id, map[string]interface{}{
		"status":    string(models.ExportCompleted),
		"s3_key":    key,
		"row_count": rows,
		"error":     "",
	})
}

// FailExport records the failure reason.
func (e *Exports) FailExport(ctx context.Context, id uuid.UUID, reason string) error {
	return e.update(ctx, id, map[string]interface{}{
		"status": string(models.ExportFailed),
		"error":  reason,
	})
}

func (e *Exports) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	res := e.db.WithContext(ctx).Model(&exportRow{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
