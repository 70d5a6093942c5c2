package responses

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
)

const (
	msgSurveyNotFound   = "Survey not found"
	msgUserNotFound     = "User not found"
	msgQuestionNotFound = "Question not found"
	msgOptionNotFound   = "Option not found"
	msgAlreadyCompleted = "User has already completed this survey"

	// EventResponseSubmitted is broadcast to the survey room and the global room after a submission.
	EventResponseSubmitted = "response_submitted"
)

// Store is the response persistence.
type Store interface {
	HasCompleted(ctx context.Context, userID, surveyID int64) (bool, error)
	// Submit inserts the response and its answers and increments the survey's response count atomically.
	// A second response for the same (user, survey) returns database.ErrDuplicate.
	Submit(ctx context.Context, r *models.SurveyResponse) error
	ListByUser(ctx context.Context, userID int64) ([]models.SurveyResponse, error)
	ListDetails(ctx context.Context, surveyID int64) ([]models.ResponseDetail, error)
}

// SurveyReader loads a survey with its questions and options.
type SurveyReader interface {
	GetByID(ctx context.Context, id int64) (*models.Survey, error)
}

// UserReader loads a user.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Scoreboard tracks response counts for the cached leaderboard.
type Scoreboard interface {
	Incr(ctx context.Context, userID int64) error
}

// Notifier fans realtime events out to websocket rooms.
type Notifier interface {
	Publish(surveyID int64, event string, payload interface{})
}

// Answer is one submitted answer.
type Answer struct {
	QuestionID       int64
	AnswerText       string
	SelectedOptionID *int64
}

// SubmittedEvent is the realtime payload of EventResponseSubmitted.
type SubmittedEvent struct {
	ResponseID    int64     `json:"responseId"`
	SurveyID      int64     `json:"surveyId"`
	UserID        int64     `json:"userId"`
	Username      string    `json:"username"`
	ResponseCount int       `json:"responseCount"`
	CompletedAt   time.Time `json:"completedAt"`
}

// Service implements the submission pipeline and response reads.
type Service struct {
	store      Store
	surveys    SurveyReader
	users      UserReader
	scoreboard Scoreboard
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a response service. scoreboard and notifier may be nil.
func NewService(store Store, surveys SurveyReader, users UserReader, scoreboard Scoreboard, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		surveys:    surveys,
		users:      users,
		scoreboard: scoreboard,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit validates and records userID's completed response to surveyID.
// It fails fast on the first violated precondition and persists nothing on failure.
func (s *Service) Submit(ctx context.Context, surveyID, userID int64, answers []Answer) (*models.SurveyResponse, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, notFound(err, msgSurveyNotFound)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}

	done, err := s.store.HasCompleted(ctx, userID, surveyID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, apperr.Conflict(msgAlreadyCompleted)
	}

	records := make([]models.AnswerRecord, 0, len(answers))
	for _, a := range answers {
		q, ok := survey.Question(a.QuestionID)
		if !ok {
			return nil, apperr.NotFound(msgQuestionNotFound)
		}
		if a.SelectedOptionID != nil {
			if _, ok := q.Option(*a.SelectedOptionID); !ok {
				return nil, apperr.NotFound(msgOptionNotFound)
			}
		}
		records = append(records, models.AnswerRecord{
			QuestionID:       q.ID,
			AnswerText:       a.AnswerText,
			SelectedOptionID: a.SelectedOptionID,
		})
	}

	now := s.now().UTC()
	resp := &models.SurveyResponse{
		SurveyID:    surveyID,
		UserID:      userID,
		StartedAt:   now,
		CompletedAt: &now,
		Answers:     records,
	}
	if err := s.store.Submit(ctx, resp); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict(msgAlreadyCompleted)
		}
		return nil, err
	}

	s.afterSubmit(ctx, survey, user, resp)
	return resp, nil
}

// afterSubmit runs side effects that must not fail a committed submission.
func (s *Service) afterSubmit(ctx context.Context, survey *models.Survey, user *models.User, resp *models.SurveyResponse) {
	if s.scoreboard != nil {
		if err := s.scoreboard.Incr(ctx, user.ID); err != nil {
			s.logger.Warn("leaderboard increment failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.Publish(survey.ID, EventResponseSubmitted, SubmittedEvent{
			ResponseID:    resp.ID,
			SurveyID:      survey.ID,
			UserID:        user.ID,
			Username:      user.Username,
			ResponseCount: survey.ResponseCount + 1,
			CompletedAt:   *resp.CompletedAt,
		})
	}
}

// HasCompleted reports whether userID has a response to surveyID.
func (s *Service) HasCompleted(ctx context.Context, userID, surveyID int64) (bool, error) {
	return s.store.HasCompleted(ctx, userID, surveyID)
}

// ListByUser returns the user's responses with answers.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.SurveyResponse, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.SurveyResponse{}
	}
	return list, nil
}

// ListDetails returns every response to a survey with respondent and question texts.
func (s *Service) ListDetails(ctx context.Context, surveyID int64) ([]models.ResponseDetail, error) {
	if _, err := s.surveys.GetByID(ctx, surveyID); err != nil {
		return nil, notFound(err, msgSurveyNotFound)
	}
	list, err := s.store.ListDetails(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.ResponseDetail{}
	}
	return list, nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}
