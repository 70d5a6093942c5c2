package responses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
)

// memStore keeps responses in memory and enforces one response per (user, survey).
type memStore struct {
	responses []models.SurveyResponse
	// skipCheck makes HasCompleted lie, simulating a concurrent submission that slipped past the pre-check.
	skipCheck bool
}

func (m *memStore) HasCompleted(_ context.Context, userID, surveyID int64) (bool, error) {
	if m.skipCheck {
		return false, nil
	}
	for _, r := range m.responses {
		if r.UserID == userID && r.SurveyID == surveyID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Submit(_ context.Context, r *models.SurveyResponse) error {
	for _, existing := range m.responses {
		if existing.UserID == r.UserID && existing.SurveyID == r.SurveyID {
			return database.ErrDuplicate
		}
	}
	r.ID = int64(len(m.responses) + 1)
	m.responses = append(m.responses, *r)
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID int64) ([]models.SurveyResponse, error) {
	var out []models.SurveyResponse
	for _, r := range m.responses {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListDetails(context.Context, int64) ([]models.ResponseDetail, error) {
	return nil, nil
}

type surveyMap map[int64]*models.Survey

func (s surveyMap) GetByID(_ context.Context, id int64) (*models.Survey, error) {
	if sv, ok := s[id]; ok {
		return sv, nil
	}
	return nil, database.ErrNotFound
}

type userMap map[int64]*models.User

func (u userMap) GetByID(_ context.Context, id int64) (*models.User, error) {
	if usr, ok := u[id]; ok {
		return usr, nil
	}
	return nil, database.ErrNotFound
}

type countingScoreboard struct {
	calls []int64
	err   error
}

func (c *countingScoreboard) Incr(_ context.Context, userID int64) error {
	c.calls = append(c.calls, userID)
	return c.err
}

type recordingNotifier struct {
	events []string
	rooms  []int64
}

func (r *recordingNotifier) Publish(surveyID int64, event string, _ interface{}) {
	r.rooms = append(r.rooms, surveyID)
	r.events = append(r.events, event)
}

func int64p(v int64) *int64 { return &v }

// fixture: survey 10 with a text question 1 and a choice question 2 whose options are 7 and 8.
func fixture() (surveyMap, userMap) {
	sv := &models.Survey{
		ID:    10,
		Title: "Colours",
		Questions: []models.Question{
			{ID: 1, SurveyID: 10, Text: "Favourite colour?", Type: models.QuestionText},
			{ID: 2, SurveyID: 10, Text: "Pick", Type: models.QuestionSingleChoice, Options: []models.QuestionOption{
				{ID: 7, QuestionID: 2, OptionText: "Red"},
				{ID: 8, QuestionID: 2, OptionText: "Green"},
			}},
		},
	}
	return surveyMap{10: sv}, userMap{1: {ID: 1, Username: "alice", Role: models.RoleUser}}
}

func newTestService(store Store, sb Scoreboard, n Notifier) *Service {
	surveys, users := fixture()
	svc := NewService(store, surveys, users, sb, n, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func sampleAnswers() []Answer {
	return []Answer{
		{QuestionID: 1, AnswerText: "blue"},
		{QuestionID: 2, SelectedOptionID: int64p(7)},
	}
}

func TestSubmitEchoesAnswers(t *testing.T) {
	store := &memStore{}
	sb := &countingScoreboard{}
	n := &recordingNotifier{}
	svc := newTestService(store, sb, n)

	resp, err := svc.Submit(context.Background(), 10, 1, sampleAnswers())
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, int64(10), resp.SurveyID)
	assert.Equal(t, int64(1), resp.UserID)
	require.NotNil(t, resp.CompletedAt)
	assert.Equal(t, resp.StartedAt, *resp.CompletedAt)
	require.Len(t, resp.Answers, 2)
	assert.Equal(t, int64(1), resp.Answers[0].QuestionID)
	assert.Equal(t, "blue", resp.Answers[0].AnswerText)
	assert.Nil(t, resp.Answers[0].SelectedOptionID)
	assert.Equal(t, int64(2), resp.Answers[1].QuestionID)
	assert.Equal(t, int64(7), *resp.Answers[1].SelectedOptionID)

	assert.Equal(t, []int64{1}, sb.calls)
	assert.Equal(t, []string{EventResponseSubmitted}, n.events)
	assert.Equal(t, []int64{10}, n.rooms)
}

func TestSubmitTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := newTestService(store, nil, nil)

	_, err := svc.Submit(ctx, 10, 1, sampleAnswers())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, 10, 1, sampleAnswers())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Equal(t, msgAlreadyCompleted, err.Error())
	assert.Len(t, store.responses, 1)
}

func TestSubmitStorageDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := newTestService(store, nil, nil)
	_, err := svc.Submit(ctx, 10, 1, sampleAnswers())
	require.NoError(t, err)

	store.skipCheck = true
	_, err = svc.Submit(ctx, 10, 1, sampleAnswers())
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Len(t, store.responses, 1)
}

func TestSubmitFailsFast(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		surveyID int64
		userID   int64
		answers  []Answer
		msg      string
	}{
		{"missing survey", 99, 1, sampleAnswers(), msgSurveyNotFound},
		{"missing user", 10, 42, sampleAnswers(), msgUserNotFound},
		{"question of another survey", 10, 1, []Answer{{QuestionID: 1, AnswerText: "ok"}, {QuestionID: 3}}, msgQuestionNotFound},
		{"option of another question", 10, 1, []Answer{{QuestionID: 1, SelectedOptionID: int64p(7)}}, msgOptionNotFound},
		{"unknown option", 10, 1, []Answer{{QuestionID: 2, SelectedOptionID: int64p(9)}}, msgOptionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			sb := &countingScoreboard{}
			svc := newTestService(store, sb, nil)
			_, err := svc.Submit(ctx, tt.surveyID, tt.userID, tt.answers)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeNotFound))
			assert.Equal(t, tt.msg, err.Error())
			assert.Empty(t, store.responses)
			assert.Empty(t, sb.calls)
		})
	}
}

func TestSubmitSurvivesScoreboardFailure(t *testing.T) {
	sb := &countingScoreboard{err: errors.New("redis down")}
	svc := newTestService(&memStore{}, sb, nil)

	_, err := svc.Submit(context.Background(), 10, 1, sampleAnswers())
	require.NoError(t, err)
	assert.Len(t, sb.calls, 1)
}

func TestListDetailsMissingSurvey(t *testing.T) {
	svc := newTestService(&memStore{}, nil, nil)
	_, err := svc.ListDetails(context.Background(), 99)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	list, err := svc.ListDetails(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
}
