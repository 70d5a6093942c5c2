package surveys

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/database"
)

// Repository handles survey, question and option persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a surveys repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const surveyColumns = `id, title, COALESCE(description,''), category_id, created_by, duration_minutes, response_count, created_at, updated_at`

func scanSurvey(row pgx.Row, s *models.Survey) error {
	return row.Scan(&s.ID, &s.Title, &s.Description, &s.CategoryID, &s.CreatedBy, &s.DurationMinutes,
		&s.ResponseCount, &s.CreatedAt, &s.UpdatedAt)
}

// List returns all surveys, newest first, with questions and options.
func (r *Repository) List(ctx context.Context) ([]models.Survey, error) {
	return r.list(ctx, `SELECT `+surveyColumns+` FROM surveys ORDER BY created_at DESC, id DESC`)
}

// ListByCategory returns the surveys of one category.
func (r *Repository) ListByCategory(ctx context.Context, categoryID int64) ([]models.Survey, error) {
	return r.list(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE category_id = $1 ORDER BY created_at DESC, id DESC`, categoryID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]models.Survey, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	list := []models.Survey{}
	for rows.Next() {
		var s models.Survey
		if err := scanSurvey(rows, &s); err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := attachQuestions(ctx, r.pool, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID returns a survey with questions and options.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Survey, error) {
	var s models.Survey
	if err := scanSurvey(r.pool.QueryRow(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, id), &s); err != nil {
		return nil, database.Translate(err)
	}
	list := []models.Survey{s}
	if err := attachQuestions(ctx, r.pool, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// attachQuestions loads questions and options for surveys in two queries and stitches them in order.
func attachQuestions(ctx context.Context, q querier, surveys []models.Survey) error {
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

	rows, err := q.Query(ctx, `SELECT id, survey_id, question_text, question_type, order_number, required
		FROM questions WHERE survey_id = ANY($1) ORDER BY order_number, id`, ids)
	if err != nil {
		return err
	}
	var questions []models.Question
	for rows.Next() {
		var qu models.Question
		if err := rows.Scan(&qu.ID, &qu.SurveyID, &qu.Text, &qu.Type, &qu.OrderNumber, &qu.Required); err != nil {
			rows.Close()
			return err
		}
		qu.Options = []models.QuestionOption{}
		questions = append(questions, qu)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(questions) == 0 {
		return nil
	}

	qIDs := make([]int64, len(questions))
	qIndex := make(map[int64]int, len(questions))
	for i := range questions {
		qIDs[i] = questions[i].ID
		qIndex[questions[i].ID] = i
	}
	rows, err = q.Query(ctx, `SELECT id, question_id, option_text, order_number
		FROM question_options WHERE question_id = ANY($1) ORDER BY order_number, id`, qIDs)
	if err != nil {
		return err
	}
	for rows.Next() {
		var o models.QuestionOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &o.OrderNumber); err != nil {
			rows.Close()
			return err
		}
		i := qIndex[o.QuestionID]
		questions[i].Options = append(questions[i].Options, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, qu := range questions {
		i := index[qu.SurveyID]
		surveys[i].Questions = append(surveys[i].Questions, qu)
	}
	return nil
}

// Create inserts a survey with its questions and options in one transaction.
func (r *Repository) Create(ctx context.Context, s *models.Survey) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO surveys (title, description, category_id, created_by, duration_minutes)
			VALUES ($1, NULLIF($2,''), $3, $4, $5)
			RETURNING id, response_count, created_at, updated_at`
		if err := tx.QueryRow(ctx, q, s.Title, s.Description, s.CategoryID, s.CreatedBy, s.DurationMinutes).
			Scan(&s.ID, &s.ResponseCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		for i := range s.Questions {
			if err := insertQuestion(ctx, tx, s.ID, &s.Questions[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update applies full replacement: rows with an id are updated, rows without are inserted,
// and questions or options of the survey not present in s are deleted.
func (r *Repository) Update(ctx context.Context, s *models.Survey) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `UPDATE surveys SET title = $2, description = NULLIF($3,''), category_id = $4,
			duration_minutes = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING response_count, created_at, updated_at`
		if err := tx.QueryRow(ctx, q, s.ID, s.Title, s.Description, s.CategoryID, s.DurationMinutes).
			Scan(&s.ResponseCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}

		keep := make([]int64, 0, len(s.Questions))
		for _, qu := range s.Questions {
			if qu.ID != 0 {
				keep = append(keep, qu.ID)
			}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE survey_id = $1 AND NOT (id = ANY($2))`, s.ID, keep); err != nil {
			return err
		}

		for i := range s.Questions {
			qu := &s.Questions[i]
			if qu.ID == 0 {
				if err := insertQuestion(ctx, tx, s.ID, qu); err != nil {
					return err
				}
				continue
			}
			if err := updateQuestion(ctx, tx, s.ID, qu); err != nil {
				return err
			}
		}
		return nil
	})
	return database.Translate(err)
}

func insertQuestion(ctx context.Context, tx pgx.Tx, surveyID int64, qu *models.Question) error {
	const q = `INSERT INTO questions (survey_id, question_text, question_type, order_number, required)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := tx.QueryRow(ctx, q, surveyID, qu.Text, string(qu.Type), qu.OrderNumber, qu.Required).Scan(&qu.ID); err != nil {
		return err
	}
	qu.SurveyID = surveyID
	for i := range qu.Options {
		if err := insertOption(ctx, tx, qu.ID, &qu.Options[i]); err != nil {
			return err
		}
	}
	return nil
}

func updateQuestion(ctx context.Context, tx pgx.Tx, surveyID int64, qu *models.Question) error {
	const q = `UPDATE questions SET question_text = $3, question_type = $4, order_number = $5, required = $6
		WHERE id = $1 AND survey_id = $2`
	tag, err := tx.Exec(ctx, q, qu.ID, surveyID, qu.Text, string(qu.Type), qu.OrderNumber, qu.Required)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	qu.SurveyID = surveyID

	keep := make([]int64, 0, len(qu.Options))
	for _, o := range qu.Options {
		if o.ID != 0 {
			keep = append(keep, o.ID)
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM question_options WHERE question_id = $1 AND NOT (id = ANY($2))`, qu.ID, keep); err != nil {
		return err
	}
	for i := range qu.Options {
		o := &qu.Options[i]
		if o.ID == 0 {
			if err := insertOption(ctx, tx, qu.ID, o); err != nil {
				return err
			}
			continue
		}
		tag, err := tx.Exec(ctx, `UPDATE question_options SET option_text = $3, order_number = $4
			WHERE id = $1 AND question_id = $2`, o.ID, qu.ID, o.OptionText, o.OrderNumber)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return database.ErrNotFound
		}
		o.QuestionID = qu.ID
	}
	return nil
}

func insertOption(ctx context.Context, tx pgx.Tx, questionID int64, o *models.QuestionOption) error {
	o.QuestionID = questionID
	return tx.QueryRow(ctx, `INSERT INTO question_options (question_id, option_text, order_number)
		VALUES ($1, $2, $3) RETURNING id`, questionID, o.OptionText, o.OrderNumber).Scan(&o.ID)
}

// Delete removes a survey.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM surveys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// CategoryExists reports whether a category with id exists.
func (r *Repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM survey_categories WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}
