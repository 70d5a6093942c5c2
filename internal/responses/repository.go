package responses

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/database"
)

// Repository handles survey response persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a responses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// HasCompleted reports whether a response exists for (userID, surveyID).
func (r *Repository) HasCompleted(ctx context.Context, userID, surveyID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM survey_responses
		WHERE user_id = $1 AND survey_id = $2 AND completed_at IS NOT NULL)`, userID, surveyID).Scan(&ok)
	return ok, err
}

// Submit inserts the response with its answers and bumps the survey's response count in one transaction.
// The UNIQUE(user_id, survey_id) constraint rejects a second response with ErrDuplicate.
func (r *Repository) Submit(ctx context.Context, resp *models.SurveyResponse) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertResponse = `INSERT INTO survey_responses (survey_id, user_id, started_at, completed_at)
			VALUES ($1, $2, $3, $4) RETURNING id`
		if err := tx.QueryRow(ctx, insertResponse, resp.SurveyID, resp.UserID, resp.StartedAt, resp.CompletedAt).
			Scan(&resp.ID); err != nil {
			return err
		}

		const insertAnswer = `INSERT INTO answer_records (response_id, question_id, answer_text, selected_option_id)
			VALUES ($1, $2, NULLIF($3,''), $4)`
		batch := &pgx.Batch{}
		for i := range resp.Answers {
			a := &resp.Answers[i]
			a.ResponseID = resp.ID
			batch.Queue(insertAnswer, resp.ID, a.QuestionID, a.AnswerText, a.SelectedOptionID)
		}
		batch.Queue(`UPDATE surveys SET response_count = response_count + 1 WHERE id = $1`, resp.SurveyID)
		return tx.SendBatch(ctx, batch).Close()
	})
	return database.Translate(err)
}

// ListByUser returns the user's responses, newest first, with answers.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.SurveyResponse, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, survey_id, user_id, started_at, completed_at
		FROM survey_responses WHERE user_id = $1 ORDER BY completed_at DESC NULLS LAST, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	var list []models.SurveyResponse
	index := map[int64]int{}
	for rows.Next() {
		var sr models.SurveyResponse
		if err := rows.Scan(&sr.ID, &sr.SurveyID, &sr.UserID, &sr.StartedAt, &sr.CompletedAt); err != nil {
			rows.Close()
			return nil, err
		}
		sr.Answers = []models.AnswerRecord{}
		index[sr.ID] = len(list)
		list = append(list, sr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	rows, err = r.pool.Query(ctx, `SELECT a.id, a.response_id, a.question_id, COALESCE(a.answer_text,''), a.selected_option_id
		FROM answer_records a
		JOIN survey_responses sr ON sr.id = a.response_id
		WHERE sr.user_id = $1
		ORDER BY a.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a models.AnswerRecord
		if err := rows.Scan(&a.ID, &a.ResponseID, &a.QuestionID, &a.AnswerText, &a.SelectedOptionID); err != nil {
			return nil, err
		}
		if i, ok := index[a.ResponseID]; ok {
			list[i].Answers = append(list[i].Answers, a)
		}
	}
	return list, rows.Err()
}

// ListDetails returns every response to a survey with usernames, question texts and option texts.
func (r *Repository) ListDetails(ctx context.Context, surveyID int64) ([]models.ResponseDetail, error) {
	const q = `SELECT sr.id, sr.user_id, u.username, sr.completed_at,
			a.question_id, q.question_text, COALESCE(a.answer_text,''), a.selected_option_id, o.option_text
		FROM survey_responses sr
		JOIN users u ON u.id = sr.user_id
		LEFT JOIN answer_records a ON a.response_id = sr.id
		LEFT JOIN questions q ON q.id = a.question_id
		LEFT JOIN question_options o ON o.id = a.selected_option_id
		WHERE sr.survey_id = $1
		ORDER BY sr.completed_at, sr.id, q.order_number, a.id`
	rows, err := r.pool.Query(ctx, q, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ResponseDetail
	for rows.Next() {
		var (
			d            models.ResponseDetail
			questionID   *int64
			questionText *string
			answerText   string
			optionID     *int64
			optionText   *string
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.Username, &d.CompletedAt,
			&questionID, &questionText, &answerText, &optionID, &optionText); err != nil {
			return nil, err
		}
		if n := len(list); n == 0 || list[n-1].ID != d.ID {
			d.Answers = []models.AnswerDetail{}
			list = append(list, d)
		}
		if questionID == nil {
			continue
		}
		ad := models.AnswerDetail{
			QuestionID:         *questionID,
			AnswerText:         answerText,
			SelectedOptionID:   optionID,
			SelectedOptionText: optionText,
		}
		if questionText != nil {
			ad.QuestionText = *questionText
		}
		last := &list[len(list)-1]
		last.Answers = append(last.Answers, ad)
	}
	return list, rows.Err()
}
