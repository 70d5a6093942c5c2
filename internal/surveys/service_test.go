package surveys

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/apperr"
	"github.com/survey-app/backend/pkg/database"
)

type stubStore struct {
	surveys    map[int64]*models.Survey
	categories map[int64]bool
	nextID     int64
	updated    *models.Survey
}

func newStubStore() *stubStore {
	return &stubStore{surveys: map[int64]*models.Survey{}, categories: map[int64]bool{1: true}}
}

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stubStore) List(context.Context) ([]models.Survey, error) {
	var out []models.Survey
	for _, sv := range s.surveys {
		out = append(out, *sv)
	}
	return out, nil
}

func (s *stubStore) ListByCategory(_ context.Context, categoryID int64) ([]models.Survey, error) {
	var out []models.Survey
	for _, sv := range s.surveys {
		if sv.CategoryID != nil && *sv.CategoryID == categoryID {
			out = append(out, *sv)
		}
	}
	return out, nil
}

func (s *stubStore) GetByID(_ context.Context, id int64) (*models.Survey, error) {
	sv, ok := s.surveys[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *sv
	return &cp, nil
}

func (s *stubStore) assignIDs(sv *models.Survey) {
	for i := range sv.Questions {
		q := &sv.Questions[i]
		if q.ID == 0 {
			q.ID = s.id()
		}
		for j := range q.Options {
			if q.Options[j].ID == 0 {
				q.Options[j].ID = s.id()
			}
		}
	}
}

func (s *stubStore) Create(_ context.Context, sv *models.Survey) error {
	sv.ID = s.id()
	s.assignIDs(sv)
	cp := *sv
	s.surveys[sv.ID] = &cp
	return nil
}

func (s *stubStore) Update(_ context.Context, sv *models.Survey) error {
	if _, ok := s.surveys[sv.ID]; !ok {
		return database.ErrNotFound
	}
	s.assignIDs(sv)
	cp := *sv
	s.surveys[sv.ID] = &cp
	s.updated = &cp
	return nil
}

func (s *stubStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.surveys[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.surveys, id)
	return nil
}

func (s *stubStore) CategoryExists(_ context.Context, id int64) (bool, error) {
	return s.categories[id], nil
}

func ptr(v int64) *int64 { return &v }

func sampleInput() Input {
	return Input{
		Title:      "Warna favorit",
		CategoryID: ptr(1),
		Questions: []QuestionInput{
			{Text: "Favourite colour?", Type: "TEXT", Required: true},
			{Text: "Pick one", Type: "MULTIPLE_CHOICE", Options: []OptionInput{{OptionText: "A"}, {OptionText: "B"}}},
		},
	}
}

func TestCreate(t *testing.T) {
	store := newStubStore()
	svc := NewService(store)

	sv, err := svc.Create(context.Background(), 7, sampleInput())
	require.NoError(t, err)
	assert.NotZero(t, sv.ID)
	assert.Equal(t, int64(7), *sv.CreatedBy)
	require.Len(t, sv.Questions, 2)
	assert.Equal(t, 1, sv.Questions[0].OrderNumber)
	assert.Equal(t, 2, sv.Questions[1].OrderNumber)
	assert.Equal(t, models.QuestionMultipleChoice, sv.Questions[1].Type)
	assert.Equal(t, 2, sv.Questions[1].Options[1].OrderNumber)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubStore())

	tests := []struct {
		name   string
		mutate func(*Input)
		code   apperr.Code
	}{
		{"blank title", func(in *Input) { in.Title = "  " }, apperr.CodeBadRequest},
		{"unknown category", func(in *Input) { in.CategoryID = ptr(99) }, apperr.CodeNotFound},
		{"unknown question type", func(in *Input) { in.Questions[0].Type = "ESSAY" }, apperr.CodeBadRequest},
		{"choice without options", func(in *Input) { in.Questions[1].Options = nil }, apperr.CodeBadRequest},
		{"id on create", func(in *Input) { in.Questions[0].ID = ptr(1) }, apperr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, 1, in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, tt.code), err.Error())
		})
	}
}

func TestUpdateReplacesQuestionsById(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)
	sv, err := svc.Create(ctx, 1, sampleInput())
	require.NoError(t, err)
	keepQ := sv.Questions[1]

	in := Input{
		Title:      "Renamed",
		CategoryID: ptr(1),
		Questions: []QuestionInput{
			{
				ID:   &keepQ.ID,
				Text: "Pick one again",
				Type: "MULTIPLE_CHOICE",
				Options: []OptionInput{
					{ID: &keepQ.Options[0].ID, OptionText: "A2"},
					{OptionText: "C"},
				},
			},
			{Text: "New rating", Type: "RATING"},
		},
	}
	out, err := svc.Update(ctx, sv.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", out.Title)
	require.Len(t, store.updated.Questions, 2)
	assert.Equal(t, keepQ.ID, store.updated.Questions[0].ID)
	assert.Equal(t, keepQ.Options[0].ID, store.updated.Questions[0].Options[0].ID)
	assert.Equal(t, "A2", store.updated.Questions[0].Options[0].OptionText)
	assert.NotEqual(t, keepQ.Options[1].ID, store.updated.Questions[0].Options[1].ID)
	assert.Equal(t, sv.CreatedBy, out.CreatedBy)
}

func TestUpdateRejectsForeignIds(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)
	a, err := svc.Create(ctx, 1, sampleInput())
	require.NoError(t, err)
	b, err := svc.Create(ctx, 1, sampleInput())
	require.NoError(t, err)

	in := sampleInput()
	in.Questions[0].ID = &b.Questions[0].ID
	_, err = svc.Update(ctx, a.ID, in)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	in = sampleInput()
	in.Questions[1].ID = &a.Questions[1].ID
	in.Questions[1].Options[0].ID = &b.Questions[1].Options[0].ID
	_, err = svc.Update(ctx, a.ID, in)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.Nil(t, store.updated)
}

func TestGetAndDeleteMissing(t *testing.T) {
	svc := NewService(newStubStore())
	_, err := svc.Get(context.Background(), 5)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.True(t, apperr.Is(svc.Delete(context.Background(), 5), apperr.CodeNotFound))
	_, err = svc.Update(context.Background(), 5, sampleInput())
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

type stubRefresher struct {
	calls int
	err   error
}

func (r *stubRefresher) RebuildCache(context.Context) error {
	r.calls++
	return r.err
}

func TestDeleteRefreshesLeaderboard(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubStore())
	refresher := &stubRefresher{}
	svc.SetLeaderboard(refresher, zap.NewNop())

	sv, err := svc.Create(ctx, 1, sampleInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, sv.ID))
	assert.Equal(t, 1, refresher.calls)

	assert.True(t, apperr.Is(svc.Delete(ctx, sv.ID), apperr.CodeNotFound))
	assert.Equal(t, 1, refresher.calls)
}

func TestDeleteSucceedsWhenLeaderboardRefreshFails(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubStore())
	refresher := &stubRefresher{err: errors.New("redis unavailable")}
	svc.SetLeaderboard(refresher, zap.NewNop())

	sv, err := svc.Create(ctx, 1, sampleInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, sv.ID))
	assert.Equal(t, 1, refresher.calls)
}
