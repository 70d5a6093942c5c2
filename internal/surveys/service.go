package surveys

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
)

const (
	msgSurveyNotFound   = "Survey not found"
	msgCategoryNotFound = "Category not found"
	msgQuestionNotFound = "Question not found"
	msgOptionNotFound   = "Option not found"
)

// Store is the persistence the survey service needs.
type Store interface {
	List(ctx context.Context) ([]models.Survey, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]models.Survey, error)
	GetByID(ctx context.Context, id int64) (*models.Survey, error)
	Create(ctx context.Context, s *models.Survey) error
	Update(ctx context.Context, s *models.Survey) error
	Delete(ctx context.Context, id int64) error
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// Input is the authored content of a survey.
type Input struct {
	Title           string
	Description     string
	CategoryID      *int64
	DurationMinutes int
	Questions       []QuestionInput
}

// QuestionInput is an authored question. ID is set when updating an existing question.
type QuestionInput struct {
	ID          *int64
	Text        string
	Type        string
	OrderNumber int
	Required    bool
	Options     []OptionInput
}

// OptionInput is an authored option. ID is set when updating an existing option.
type OptionInput struct {
	ID          *int64
	OptionText  string
	OrderNumber int
}

// Service implements survey authoring.
type Service struct {
	store       Store
	leaderboard LeaderboardRefresher
	logger      *zap.Logger
}

// NewService creates a survey service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// LeaderboardRefresher recomputes the cached leaderboard from stored responses.
type LeaderboardRefresher interface {
	RebuildCache(ctx context.Context) error
}

// SetLeaderboard sets the leaderboard refreshed after deletes remove responses.
func (s *Service) SetLeaderboard(r LeaderboardRefresher, logger *zap.Logger) {
	s.leaderboard = r
	s.logger = logger
}

func (s *Service) refreshLeaderboard(ctx context.Context, field zap.Field) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.RebuildCache(ctx); err != nil && s.logger != nil {
		s.logger.Warn("leaderboard refresh failed", field, zap.Error(err))
	}
}

// List returns every survey with its questions.
func (s *Service) List(ctx context.Context) ([]models.Survey, error) {
	return s.store.List(ctx)
}

// ListByCategory returns the surveys of one category.
func (s *Service) ListByCategory(ctx context.Context, categoryID int64) ([]models.Survey, error) {
	return s.store.ListByCategory(ctx, categoryID)
}

// Get returns a survey with questions and options.
func (s *Service) Get(ctx context.Context, id int64) (*models.Survey, error) {
	sv, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgSurveyNotFound)
		}
		return nil, err
	}
	return sv, nil
}

// Create stores a new survey authored by creatorID.
func (s *Service) Create(ctx context.Context, creatorID int64, in Input) (*models.Survey, error) {
	sv, err := s.build(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	sv.CreatedBy = &creatorID
	if err := s.store.Create(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// Update replaces the survey content. Questions and options carrying an id are
// updated in place, the rest are inserted, and anything not resupplied is deleted.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*models.Survey, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sv, err := s.build(ctx, in, current)
	if err != nil {
		return nil, err
	}
	sv.ID = id
	sv.CreatedBy = current.CreatedBy
	if err := s.store.Update(ctx, sv); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgSurveyNotFound)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a survey; questions, options and responses cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound(msgSurveyNotFound)
		}
		return err
	}
	s.refreshLeaderboard(ctx, zap.Int64("survey_id", id))
	return nil
}

// build validates in and converts it to a survey. current is the stored survey
// when updating; supplied ids must belong to it.
func (s *Service) build(ctx context.Context, in Input, current *models.Survey) (*models.Survey, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.BadRequest("Title is required")
	}
	if in.DurationMinutes < 0 {
		return nil, apperr.BadRequest("Duration must not be negative")
	}
	if in.CategoryID != nil {
		ok, err := s.store.CategoryExists(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFound(msgCategoryNotFound)
		}
	}

	sv := &models.Survey{
		Title:           title,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		DurationMinutes: in.DurationMinutes,
		Questions:       make([]models.Question, 0, len(in.Questions)),
	}
	seenQ := make(map[int64]bool)
	for i, qi := range in.Questions {
		q, err := buildQuestion(qi, current, seenQ)
		if err != nil {
			return nil, err
		}
		if q.OrderNumber == 0 {
			q.OrderNumber = i + 1
		}
		sv.Questions = append(sv.Questions, *q)
	}
	return sv, nil
}

func buildQuestion(in QuestionInput, current *models.Survey, seen map[int64]bool) (*models.Question, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperr.BadRequest("Question text is required")
	}
	qt, err := models.ParseQuestionType(in.Type)
	if err != nil {
		return nil, apperr.BadRequest("Invalid question type")
	}
	if qt.HasOptions() && len(in.Options) == 0 {
		return nil, apperr.BadRequest("Choice questions need at least one option")
	}

	q := &models.Question{
		Text:        text,
		Type:        qt,
		OrderNumber: in.OrderNumber,
		Required:    in.Required,
		Options:     make([]models.QuestionOption, 0, len(in.Options)),
	}
	var existing *models.Question
	if in.ID != nil {
		if current == nil || seen[*in.ID] {
			return nil, apperr.NotFound(msgQuestionNotFound)
		}
		eq, ok := current.Question(*in.ID)
		if !ok {
			return nil, apperr.NotFound(msgQuestionNotFound)
		}
		seen[*in.ID] = true
		existing = eq
		q.ID = eq.ID
	}

	seenOpt := make(map[int64]bool)
	for i, oi := range in.Options {
		optText := strings.TrimSpace(oi.OptionText)
		if optText == "" {
			return nil, apperr.BadRequest("Option text is required")
		}
		o := models.QuestionOption{OptionText: optText, OrderNumber: oi.OrderNumber}
		if o.OrderNumber == 0 {
			o.OrderNumber = i + 1
		}
		if oi.ID != nil {
			if existing == nil || seenOpt[*oi.ID] {
				return nil, apperr.NotFound(msgOptionNotFound)
			}
			if _, ok := existing.Option(*oi.ID); !ok {
				return nil, apperr.NotFound(msgOptionNotFound)
			}
			seenOpt[*oi.ID] = true
			o.ID = *oi.ID
		}
		q.Options = append(q.Options, o)
	}
	return q, nil
}
