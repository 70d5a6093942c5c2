package sqlitestore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/database"
)

// Surveys persists surveys with their questions and options.
type Surveys struct {
	db *gorm.DB
}

func (r surveyRow) model() models.Survey {
	return models.Survey{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		CreatedBy:       r.CreatedBy,
		DurationMinutes: r.DurationMinutes,
		ResponseCount:   r.ResponseCount,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// List returns all surveys, newest first.
func (s *Surveys) List(ctx context.Context) ([]models.Survey, error) {
	return s.list(ctx, s.db.WithContext(ctx))
}

// ListByCategory returns the surveys of one category.
func (s *Surveys) ListByCategory(ctx context.Context, categoryID int64) ([]models.Survey, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("category_id = ?", categoryID))
}

func (s *Surveys) list(ctx context.Context, q *gorm.DB) ([]models.Survey, error) {
	var rows []surveyRow
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Survey, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	if err := attachQuestions(s.db.WithContext(ctx), out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a survey with questions and options.
func (s *Surveys) GetByID(ctx context.Context, id int64) (*models.Survey, error) {
	var row surveyRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	list := []models.Survey{row.model()}
	if err := attachQuestions(s.db.WithContext(ctx), list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func attachQuestions(db *gorm.DB, surveys []models.Survey) error {
	if len(surveys) == 0 {
		return nil
	}
	ids := make([]int64, len(surveys))
	index := make(map[int64]int, len(surveys))
	for i := range surveys {
		ids[i] = surveys[i].ID
		index[surveys[i].ID] = i
		surveys[i].Questions = []models.Question{}
	}

	var qrows []questionRow
	if err := db.Where("survey_id IN ?", ids).Order("order_number, id").Find(&qrows).Error; err != nil {
		return err
	}
	if len(qrows) == 0 {
		return nil
	}
	qIDs := make([]int64, len(qrows))
	for i, q := range qrows {
		qIDs[i] = q.ID
	}
	var orows []optionRow
	if err := db.Where("question_id IN ?", qIDs).Order("order_number, id").Find(&orows).Error; err != nil {
		return err
	}
	options := make(map[int64][]models.QuestionOption, len(qrows))
	for _, o := range orows {
		options[o.QuestionID] = append(options[o.QuestionID], models.QuestionOption{
			ID:          o.ID,
			QuestionID:  o.QuestionID,
			OptionText:  o.OptionText,
			OrderNumber: o.OrderNumber,
		})
	}
	for _, q := range qrows {
		opts := options[q.ID]
		if opts == nil {
			opts = []models.QuestionOption{}
		}
		i := index[q.SurveyID]
		surveys[i].Questions = append(surveys[i].Questions, models.Question{
			ID:          q.ID,
			SurveyID:    q.SurveyID,
			Text:        q.QuestionText,
			Type:        models.QuestionType(q.QuestionType),
			OrderNumber: q.OrderNumber,
			Required:    q.Required,
			Options:     opts,
		})
	}
	return nil
}

// Create inserts a survey with its questions and options in one transaction.
func (s *Surveys) Create(ctx context.Context, sv *models.Survey) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := surveyRow{
			Title:           sv.Title,
			Description:     sv.Description,
			CategoryID:      sv.CategoryID,
			CreatedBy:       sv.CreatedBy,
			DurationMinutes: sv.DurationMinutes,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		sv.ID, sv.ResponseCount, sv.CreatedAt, sv.UpdatedAt = row.ID, row.ResponseCount, row.CreatedAt, row.UpdatedAt
		for i := range sv.Questions {
			if err := insertQuestion(tx, sv.ID, &sv.Questions[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update replaces the survey's fields, questions and options. Rows with an id are updated,
// rows without are inserted, and rows missing from sv are deleted.
func (s *Surveys) Update(ctx context.Context, sv *models.Survey) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&surveyRow{}).Where("id = ?", sv.ID).Updates(map[string]interface{}{
			"title":            sv.Title,
			"description":      sv.Description,
			"category_id":      sv.CategoryID,
			"duration_minutes": sv.DurationMinutes,
			"updated_at":       now,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return database.ErrNotFound
		}
		var row surveyRow
		if err := tx.First(&row, sv.ID).Error; err != nil {
			return err
		}
		sv.ResponseCount, sv.CreatedAt, sv.UpdatedAt = row.ResponseCount, row.CreatedAt, row.UpdatedAt

		keep := make([]int64, 0, len(sv.Questions))
		for _, q := range sv.Questions {
			if q.ID != 0 {
				keep = append(keep, q.ID)
			}
		}
		del := tx.Where("survey_id = ?", sv.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&questionRow{}).Error; err != nil {
			return err
		}

		for i := range sv.Questions {
			q := &sv.Questions[i]
			if q.ID == 0 {
				if err := insertQuestion(tx, sv.ID, q); err != nil {
					return err
				}
				continue
			}
			if err := updateQuestion(tx, sv.ID, q); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func insertQuestion(tx *gorm.DB, surveyID int64, q *models.Question) error {
	row := questionRow{
		SurveyID:     surveyID,
		QuestionText: q.Text,
		QuestionType: string(q.Type),
		OrderNumber:  q.OrderNumber,
		Required:     q.Required,
	}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	q.ID, q.SurveyID = row.ID, surveyID
	for i := range q.Options {
		if err := insertOption(tx, q.ID, &q.Options[i]); err != nil {
			return err
		}
	}
	return nil
}

func updateQuestion(tx *gorm.DB, surveyID int64, q *models.Question) error {
	res := tx.Model(&questionRow{}).Where("id = ? AND survey_id = ?", q.ID, surveyID).Updates(map[string]interface{}{
		"question_text": q.Text,
		"question_type": string(q.Type),
		"order_number":  q.OrderNumber,
		"required":      q.Required,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	q.SurveyID = surveyID

	keep := make([]int64, 0, len(q.Options))
	for _, o := range q.Options {
		if o.ID != 0 {
			keep = append(keep, o.ID)
		}
	}
	del := tx.Where("question_id = ?", q.ID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&optionRow{}).Error; err != nil {
		return err
	}
	for i := range q.Options {
		o := &q.Options[i]
		if o.ID == 0 {
			if err := insertOption(tx, q.ID, o); err != nil {
				return err
			}
			continue
		}
		res := tx.Model(&optionRow{}).Where("id = ? AND question_id = ?", o.ID, q.ID).Updates(map[string]interface{}{
			"option_text":  o.OptionText,
			"order_number": o.OrderNumber,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return database.ErrNotFound
		}
		o.QuestionID = q.ID
	}
	return nil
}

func insertOption(tx *gorm.DB, questionID int64, o *models.QuestionOption) error {
	row := optionRow{QuestionID: questionID, OptionText: o.OptionText, OrderNumber: o.OrderNumber}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	o.ID, o.QuestionID = row.ID, questionID
	return nil
}

// Delete removes a survey; questions, options and responses cascade.
func (s *Surveys) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&surveyRow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// CategoryExists reports whether a category with id exists.
func (s *Surveys) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&categoryRow{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
