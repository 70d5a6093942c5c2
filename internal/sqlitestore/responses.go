package sqlitestore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/survey-app/backend/internal/models"
)

// Responses persists survey responses and their answers.
type Responses struct {
	db *gorm.DB
}

// HasCompleted reports whether a completed response exists for (userID, surveyID).
func (r *Responses) HasCompleted(ctx context.Context, userID, surveyID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&responseRow{}).
		Where("user_id = ? AND survey_id = ? AND completed_at IS NOT NULL", userID, surveyID).
		Count(&n).Error
	return n > 0, err
}

// Submit inserts the response with its answers and bumps the survey's response count in one transaction.
// The unique (user_id, survey_id) index rejects a second response with ErrDuplicate.
func (r *Responses) Submit(ctx context.Context, resp *models.SurveyResponse) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := responseRow{
			SurveyID:    resp.SurveyID,
			UserID:      resp.UserID,
			StartedAt:   resp.StartedAt,
			CompletedAt: resp.CompletedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		resp.ID = row.ID

		if len(resp.Answers) > 0 {
			answers := make([]answerRow, len(resp.Answers))
			for i, a := range resp.Answers {
				answers[i] = answerRow{
					ResponseID:       row.ID,
					QuestionID:       a.QuestionID,
					AnswerText:       a.AnswerText,
					SelectedOptionID: a.SelectedOptionID,
				}
			}
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
			for i := range answers {
				resp.Answers[i].ID = answers[i].ID
				resp.Answers[i].ResponseID = row.ID
			}
		}

		return tx.Model(&surveyRow{}).Where("id = ?", resp.SurveyID).
			UpdateColumn("response_count", gorm.Expr("response_count + 1")).Error
	})
	return translate(err)
}

// ListByUser returns the user's responses, newest first, with answers.
func (r *Responses) ListByUser(ctx context.Context, userID int64) ([]models.SurveyResponse, error) {
	db := r.db.WithContext(ctx)
	var rows []responseRow
	if err := db.Where("user_id = ?", userID).
		Order("completed_at IS NULL, completed_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]models.SurveyResponse, 0, len(rows))
	if len(rows) == 0 {
		return list, nil
	}
	ids := make([]int64, len(rows))
	index := make(map[int64]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		index[row.ID] = i
		list = append(list, models.SurveyResponse{
			ID:          row.ID,
			SurveyID:    row.SurveyID,
			UserID:      row.UserID,
			StartedAt:   row.StartedAt,
			CompletedAt: row.CompletedAt,
			Answers:     []models.AnswerRecord{},
		})
	}

	var answers []answerRow
	if err := db.Where("response_id IN ?", ids).Order("id").Find(&answers).Error; err != nil {
		return nil, err
	}
	for _, a := range answers {
		i := index[a.ResponseID]
		list[i].Answers = append(list[i].Answers, models.AnswerRecord{
			ID:               a.ID,
			ResponseID:       a.ResponseID,
			QuestionID:       a.QuestionID,
			AnswerText:       a.AnswerText,
			SelectedOptionID: a.SelectedOptionID,
		})
	}
	return list, nil
}

type detailRow struct {
	ID           int64
	UserID       int64
	Username     string
	CompletedAt  *time.Time
	QuestionID   *int64
	QuestionText *string
	AnswerText   *string
	OptionID     *int64
	OptionText   *string
}

// ListDetails returns every response to a survey with usernames, question texts and option texts.
func (r *Responses) ListDetails(ctx context.Context, surveyID int64) ([]models.ResponseDetail, error) {
	var rows []detailRow
	err := r.db.WithContext(ctx).Table("survey_responses sr").
		Select(`sr.id AS id, sr.user_id AS user_id, u.username AS username, sr.completed_at AS completed_at,
			a.question_id AS question_id, q.question_text AS question_text, a.answer_text AS answer_text,
			a.selected_option_id AS option_id, o.option_text AS option_text`).
		Joins("JOIN users u ON u.id = sr.user_id").
		Joins("LEFT JOIN answer_records a ON a.response_id = sr.id").
		Joins("LEFT JOIN questions q ON q.id = a.question_id").
		Joins("LEFT JOIN question_options o ON o.id = a.selected_option_id").
		Where("sr.survey_id = ?", surveyID).
		Order("sr.completed_at, sr.id, q.order_number, a.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var list []models.ResponseDetail
	for _, row := range rows {
		if n := len(list); n == 0 || list[n-1].ID != row.ID {
			list = append(list, models.ResponseDetail{
				ID:          row.ID,
				UserID:      row.UserID,
				Username:    row.Username,
				CompletedAt: row.CompletedAt,
				Answers:     []models.AnswerDetail{},
			})
		}
		if row.QuestionID == nil {
			continue
		}
		ad := models.AnswerDetail{
			QuestionID:         *row.QuestionID,
			SelectedOptionID:   row.OptionID,
			SelectedOptionText: row.OptionText,
		}
		if row.QuestionText != nil {
			ad.QuestionText = *row.QuestionText
		}
		if row.AnswerText != nil {
			ad.AnswerText = *row.AnswerText
		}
		last := &list[len(list)-1]
		last.Answers = append(last.Answers, ad)
	}
	return list, nil
}
