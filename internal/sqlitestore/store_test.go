package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/internal/responses"
	"github.com/survey-app/backend/internal/stats"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "survey.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	s := New(db)
	require.NoError(t, s.Migrate())
	return s
}

func addUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "hash", Role: models.RoleUser}
	require.NoError(t, s.Users().Create(context.Background(), u, &models.UserProfile{FullName: username}))
	return u
}

func addCategory(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	c := &models.SurveyCategory{Name: name}
	require.NoError(t, s.Categories().Create(context.Background(), c))
	return c.ID
}

func addSurvey(t *testing.T, s *Store, title string, categoryID int64) *models.Survey {
	t.Helper()
	sv := &models.Survey{
		Title:      title,
		CategoryID: &categoryID,
		Questions: []models.Question{
			{Text: "Pick one", Type: models.QuestionSingleChoice, OrderNumber: 1, Options: []models.QuestionOption{
				{OptionText: "A", OrderNumber: 1},
				{OptionText: "B", OrderNumber: 2},
			}},
			{Text: "Why?", Type: models.QuestionText, OrderNumber: 2},
		},
	}
	require.NoError(t, s.Surveys().Create(context.Background(), sv))
	return sv
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := addUser(t, s, "alice")
	assert.NotZero(t, alice.ID)

	err := s.Users().Create(ctx, &models.User{Username: "alice", Password: "x", Role: models.RoleUser}, nil)
	assert.ErrorIs(t, err, database.ErrDuplicate)

	got, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	p, err := s.Users().GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.FullName)

	_, err = s.Users().GetByID(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)

	alice.Role = models.RoleAdmin
	require.NoError(t, s.Users().Update(ctx, alice))
	got, err = s.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	require.NoError(t, s.Users().Delete(ctx, alice.ID))
	assert.ErrorIs(t, s.Users().Delete(ctx, alice.ID), database.ErrNotFound)
	_, err = s.Users().GetProfile(ctx, alice.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSurveyUpdateReplacesQuestions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cat := addCategory(t, s, "Trivia")
	sv := addSurvey(t, s, "Quiz", cat)

	got, err := s.Surveys().GetByID(ctx, sv.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 2)
	require.Len(t, got.Questions[0].Options, 2)
	assert.Empty(t, got.Questions[1].Options)

	kept := got.Questions[0]
	kept.Text = "Pick one (edited)"
	kept.Options = []models.QuestionOption{kept.Options[1], {OptionText: "C", OrderNumber: 2}}
	got.Title = "Quiz v2"
	got.Questions = []models.Question{kept, {Text: "Rate it", Type: models.QuestionRating, OrderNumber: 2}}
	require.NoError(t, s.Surveys().Update(ctx, got))

	after, err := s.Surveys().GetByID(ctx, sv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quiz v2", after.Title)
	require.Len(t, after.Questions, 2)
	assert.Equal(t, kept.ID, after.Questions[0].ID)
	assert.Equal(t, "Pick one (edited)", after.Questions[0].Text)
	require.Len(t, after.Questions[0].Options, 2)
	assert.Equal(t, "B", after.Questions[0].Options[0].OptionText)
	assert.Equal(t, "C", after.Questions[0].Options[1].OptionText)
	assert.Equal(t, models.QuestionRating, after.Questions[1].Type)

	after.Questions = nil
	require.NoError(t, s.Surveys().Update(ctx, after))
	empty, err := s.Surveys().GetByID(ctx, sv.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Questions)

	missing := &models.Survey{ID: 999, Title: "x"}
	assert.ErrorIs(t, s.Surveys().Update(ctx, missing), database.ErrNotFound)
}

func TestSurveyListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	trivia := addCategory(t, s, "Trivia")
	history := addCategory(t, s, "Sejarah")
	addSurvey(t, s, "One", trivia)
	two := addSurvey(t, s, "Two", history)

	all, err := s.Surveys().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byCat, err := s.Surveys().ListByCategory(ctx, history)
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "Two", byCat[0].Title)

	ok, err := s.Surveys().CategoryExists(ctx, trivia)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Surveys().CategoryExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Surveys().Delete(ctx, two.ID))
	assert.ErrorIs(t, s.Surveys().Delete(ctx, two.ID), database.ErrNotFound)
	_, err = s.Surveys().GetByID(ctx, two.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func newResponseService(s *Store) *responses.Service {
	return responses.NewService(s.Responses(), s.Surveys(), s.Users(), nil, nil, zap.NewNop())
}

func TestSubmitOncePerUserAndSurvey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := addUser(t, s, "bob")
	sv := addSurvey(t, s, "Quiz", addCategory(t, s, "Trivia"))
	svc := newResponseService(s)

	opt := sv.Questions[0].Options[1].ID
	resp, err := svc.Submit(ctx, sv.ID, u.ID, []responses.Answer{
		{QuestionID: sv.Questions[0].ID, SelectedOptionID: &opt},
		{QuestionID: sv.Questions[1].ID, AnswerText: "because"},
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)

	_, err = svc.Submit(ctx, sv.ID, u.ID, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	now := time.Now().UTC()
	err = s.Responses().Submit(ctx, &models.SurveyResponse{SurveyID: sv.ID, UserID: u.ID, StartedAt: now, CompletedAt: &now})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	got, err := s.Surveys().GetByID(ctx, sv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ResponseCount)

	done, err := svc.HasCompleted(ctx, u.ID, sv.ID)
	require.NoError(t, err)
	assert.True(t, done)

	list, err := svc.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Answers, 2)

	details, err := svc.ListDetails(ctx, sv.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "bob", details[0].Username)
	require.Len(t, details[0].Answers, 2)
	assert.Equal(t, "Pick one", details[0].Answers[0].QuestionText)
	require.NotNil(t, details[0].Answers[0].SelectedOptionText)
	assert.Equal(t, "B", *details[0].Answers[0].SelectedOptionText)
	assert.Equal(t, "because", details[0].Answers[1].AnswerText)
}

func TestDeletingSurveyRemovesResponses(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := addUser(t, s, "carol")
	sv := addSurvey(t, s, "Quiz", addCategory(t, s, "Trivia"))
	_, err := newResponseService(s).Submit(ctx, sv.ID, u.ID, nil)
	require.NoError(t, err)

	require.NoError(t, s.Surveys().Delete(ctx, sv.ID))
	n, err := s.Stats().CountUserResponses(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStatsAggregates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	trivia := addCategory(t, s, "Trivia")
	history := addCategory(t, s, "Sejarah")
	addCategory(t, s, "Ekonomi")
	t1 := addSurvey(t, s, "T1", trivia)
	t2 := addSurvey(t, s, "T2", trivia)
	h1 := addSurvey(t, s, "H1", history)
	alice := addUser(t, s, "alice")
	bob := addUser(t, s, "bob")
	addUser(t, s, "carol")

	resp := newResponseService(s)
	for _, sub := range []struct{ survey, user int64 }{
		{t1.ID, alice.ID}, {t2.ID, alice.ID}, {h1.ID, bob.ID},
	} {
		_, err := resp.Submit(ctx, sub.survey, sub.user, nil)
		require.NoError(t, err)
	}

	svc := stats.NewService(s.Stats(), nil, zap.NewNop())

	cats, err := svc.CategoryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryStats{
		{CategoryName: "Trivia", ResponseCount: 2},
		{CategoryName: "Sejarah", ResponseCount: 1},
	}, cats)

	st, err := svc.UserSurveyStats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.SurveyStats{TotalSurveys: 3, CompletedSurveys: 2, AvailableSurveys: 1}, st)

	dash, err := svc.Dashboard(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.TotalCompleted)
	assert.Len(t, dash.RecentSurveys, 2)

	rankings, err := svc.Rankings(ctx)
	require.NoError(t, err)
	require.Len(t, rankings, 3)
	assert.Equal(t, alice.ID, rankings[0].UserID)
	assert.Equal(t, 2, rankings[0].TotalResponses)
	assert.Equal(t, 1.0, rankings[0].CompletionRate)
	assert.Equal(t, "carol", rankings[2].Username)
	assert.Equal(t, 0.0, rankings[2].CompletionRate)

	profiles, err := s.Users().ListProfileSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, 2, profiles[0].SurveysCompleted)
	assert.NotNil(t, profiles[0].LastActive)
	assert.Nil(t, profiles[2].LastActive)

	mgmt, err := s.Users().ListManagement(ctx)
	require.NoError(t, err)
	require.Len(t, mgmt, 3)
	assert.Equal(t, 1, mgmt[1].SurveysCompleted)
}

func TestExportLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := addUser(t, s, "admin")
	sv := addSurvey(t, s, "Quiz", addCategory(t, s, "Trivia"))

	e := &models.ResponseExport{ID: uuid.New(), SurveyID: sv.ID, RequestedBy: u.ID, Status: models.ExportPending}
	require.NoError(t, s.Exports().CreateExport(ctx, e))

	got, err := s.Exports().GetExport(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportPending, got.Status)
	assert.Equal(t, u.ID, got.RequestedBy)

	require.NoError(t, s.Exports().CompleteExport(ctx, e.ID, "exports/survey-1/x.csv", 4))
	got, err = s.Exports().GetExport(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportCompleted, got.Status)
	assert.Equal(t, 4, got.RowCount)

	require.NoError(t, s.Exports().FailExport(ctx, e.ID, "boom"))
	got, err = s.Exports().GetExport(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "boom", got.Error)

	_, err = s.Exports().GetExport(ctx, uuid.New())
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, s.Exports().FailExport(ctx, uuid.New(), "x"), database.ErrNotFound)
}
