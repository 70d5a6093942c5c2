package sqlitestore

import (
	"context"

	"gorm.io/gorm"

	"github.com/survey-app/backend/internal/models"
)

// Categories persists survey categories.
type Categories struct {
	db *gorm.DB
}

// List returns all categories ordered by id.
func (c *Categories) List(ctx context.Context) ([]models.SurveyCategory, error) {
	var rows []categoryRow
	if err := c.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.SurveyCategory, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SurveyCategory{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out, nil
}

// Create inserts a category.
func (c *Categories) Create(ctx context.Context, cat *models.SurveyCategory) error {
	row := categoryRow{Name: cat.Name, Description: cat.Description}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	cat.ID = row.ID
	return nil
}
