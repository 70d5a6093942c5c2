package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
)

type stubStore struct {
	surveys    int
	responses  map[int64]int
	activity   []models.ResponseActivity
	totals     []models.ResponseTotals
	categories []models.CategoryStats
}

func (s *stubStore) CountSurveys(context.Context) (int, error) { return s.surveys, nil }

func (s *stubStore) CountUserResponses(_ context.Context, userID int64) (int, error) {
	return s.responses[userID], nil
}

func (s *stubStore) ListUserActivity(context.Context, int64) ([]models.ResponseActivity, error) {
	return s.activity, nil
}

func (s *stubStore) ListResponseTotals(context.Context) ([]models.ResponseTotals, error) {
	return s.totals, nil
}

func (s *stubStore) CountByCategory(context.Context) ([]models.CategoryStats, error) {
	return s.categories, nil
}

type failingCache struct{}

func (failingCache) Top(context.Context, int64) ([]models.LeaderboardEntry, error) {
	return nil, errors.New("redis unavailable")
}

func (failingCache) Rank(context.Context, int64) (*models.LeaderboardEntry, error) {
	return nil, errors.New("redis unavailable")
}

func (failingCache) Rebuild(context.Context, []models.ResponseTotals) error { return nil }

func TestUserSurveyStatsInvariant(t *testing.T) {
	store := &stubStore{surveys: 4, responses: map[int64]int{1: 0, 2: 3, 3: 4, 4: 6}}
	svc := NewService(store, nil, zap.NewNop())

	for _, userID := range []int64{1, 2, 3, 4} {
		st, err := svc.UserSurveyStats(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, st.TotalSurveys, st.CompletedSurveys+st.AvailableSurveys, "user %d", userID)
		assert.GreaterOrEqual(t, st.AvailableSurveys, 0)
	}

	st, _ := svc.UserSurveyStats(context.Background(), 2)
	assert.Equal(t, models.SurveyStats{TotalSurveys: 4, CompletedSurveys: 3, AvailableSurveys: 1}, *st)
}

func TestRankings(t *testing.T) {
	store := &stubStore{totals: []models.ResponseTotals{
		{UserID: 3, Username: "carol", Total: 2, Completed: 2},
		{UserID: 1, Username: "admin", Total: 0, Completed: 0},
		{UserID: 4, Username: "dave", Total: 5, Completed: 4},
		{UserID: 2, Username: "bob", Total: 2, Completed: 1},
	}}
	svc := NewService(store, nil, zap.NewNop())

	list, err := svc.Rankings(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 4)

	var order []int64
	for _, r := range list {
		order = append(order, r.UserID)
	}
	assert.Equal(t, []int64{4, 2, 3, 1}, order)
	assert.Equal(t, 0.8, list[0].CompletionRate)
	assert.Equal(t, 0.5, list[1].CompletionRate)
	assert.Equal(t, 0.0, list[3].CompletionRate)
	assert.False(t, list[3].CompletionRate != list[3].CompletionRate, "rate must not be NaN")
}

func TestCategoryStatsDropsEmptyAndOrders(t *testing.T) {
	store := &stubStore{categories: []models.CategoryStats{
		{CategoryName: "Math", ResponseCount: 1},
		{CategoryName: "History", ResponseCount: 2},
	}}
	svc := NewService(store, nil, zap.NewNop())

	list, err := svc.CategoryStats(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.CategoryStats{
		{CategoryName: "History", ResponseCount: 2},
		{CategoryName: "Math", ResponseCount: 1},
	}, list)
}

func TestDashboard(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time {
		v := base.Add(time.Duration(h) * time.Hour)
		return &v
	}
	store := &stubStore{activity: []models.ResponseActivity{
		{ResponseID: 1, SurveyTitle: "s1", CompletedAt: at(1)},
		{ResponseID: 2, SurveyTitle: "s2", CompletedAt: at(5)},
		{ResponseID: 3, SurveyTitle: "s3", CompletedAt: nil},
		{ResponseID: 4, SurveyTitle: "s4", CompletedAt: at(3)},
		{ResponseID: 5, SurveyTitle: "s5", CompletedAt: at(5)},
		{ResponseID: 6, SurveyTitle: "s6", CompletedAt: at(2)},
		{ResponseID: 7, SurveyTitle: "s7", CompletedAt: at(4)},
	}}
	svc := NewService(store, nil, zap.NewNop())

	d, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 6, d.TotalCompleted)
	require.Len(t, d.RecentSurveys, 5)

	var titles []string
	for _, r := range d.RecentSurveys {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"s5", "s2", "s7", "s4", "s6"}, titles)
	assert.Equal(t, "2024-03-01T15:00:00", d.RecentSurveys[0].CompletedAt)
}

func TestDashboardEmpty(t *testing.T) {
	svc := NewService(&stubStore{}, nil, zap.NewNop())
	d, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, d.TotalCompleted)
	assert.NotNil(t, d.RecentSurveys)
}

func TestTopFallsBackToDatabase(t *testing.T) {
	store := &stubStore{totals: []models.ResponseTotals{
		{UserID: 1, Username: "a", Total: 1, Completed: 1},
		{UserID: 2, Username: "b", Total: 3, Completed: 3},
		{UserID: 3, Username: "c", Total: 2, Completed: 2},
	}}

	for name, cache := range map[string]Cache{"no cache": nil, "cache down": failingCache{}} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(store, cache, zap.NewNop())
			top, err := svc.Top(context.Background(), 2)
			require.NoError(t, err)
			require.Len(t, top, 2)
			assert.Equal(t, models.LeaderboardEntry{Rank: 1, UserID: 2, Username: "b", TotalResponses: 3}, top[0])
			assert.Equal(t, int64(3), top[1].UserID)

			me, err := svc.Position(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, int64(3), me.Rank)
		})
	}
}
