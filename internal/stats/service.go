package stats

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
)

const (
	recentLimit = 5
	// recentLayout is the ISO local date-time used by the dashboard.
	recentLayout = "2006-01-02T15:04:05"

	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Store is the read-only aggregate persistence used by the statistics engine.
type Store interface {
	CountSurveys(ctx context.Context) (int, error)
	CountUserResponses(ctx context.Context, userID int64) (int, error)
	ListUserActivity(ctx context.Context, userID int64) ([]models.ResponseActivity, error)
	ListResponseTotals(ctx context.Context) ([]models.ResponseTotals, error)
	CountByCategory(ctx context.Context) ([]models.CategoryStats, error)
}

// Cache is the ranked response-count cache.
type Cache interface {
	Top(ctx context.Context, limit int64) ([]models.LeaderboardEntry, error)
	Rank(ctx context.Context, userID int64) (*models.LeaderboardEntry, error)
	Rebuild(ctx context.Context, totals []models.ResponseTotals) error
}

// Service derives dashboard counts, completion rates, category counts and rankings.
type Service struct {
	store  Store
	cache  Cache
	logger *zap.Logger
}

// NewService creates a statistics service. cache may be nil.
func NewService(store Store, cache Cache, logger *zap.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger}
}

// UserSurveyStats returns total, completed and available surveys for a user.
// Deleted surveys take their responses with them, so completed never exceeds total;
// available is still clamped so total = completed + available holds.
func (s *Service) UserSurveyStats(ctx context.Context, userID int64) (*models.SurveyStats, error) {
	total, err := s.store.CountSurveys(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.store.CountUserResponses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if completed > total {
		completed = total
	}
	return &models.SurveyStats{
		TotalSurveys:     total,
		CompletedSurveys: completed,
		AvailableSurveys: total - completed,
	}, nil
}

// Dashboard returns the user's completed count and five most recent completions.
func (s *Service) Dashboard(ctx context.Context, userID int64) (*models.DashboardStats, error) {
	activity, err := s.store.ListUserActivity(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed := make([]models.ResponseActivity, 0, len(activity))
	for _, a := range activity {
		if a.CompletedAt != nil {
			completed = append(completed, a)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		ti, tj := *completed[i].CompletedAt, *completed[j].CompletedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return completed[i].ResponseID > completed[j].ResponseID
	})

	out := &models.DashboardStats{TotalCompleted: len(completed), RecentSurveys: []models.RecentSurvey{}}
	for i := 0; i < len(completed) && i < recentLimit; i++ {
		out.RecentSurveys = append(out.RecentSurveys, models.RecentSurvey{
			Title:       completed[i].SurveyTitle,
			CompletedAt: completed[i].CompletedAt.Format(recentLayout),
		})
	}
	return out, nil
}

// Rankings returns every user ordered by total responses, highest first, ties by user id.
func (s *Service) Rankings(ctx context.Context) ([]models.Ranking, error) {
	totals, err := s.store.ListResponseTotals(ctx)
	if err != nil {
		return nil, err
	}
	return rank(totals), nil
}

func rank(totals []models.ResponseTotals) []models.Ranking {
	out := make([]models.Ranking, 0, len(totals))
	for _, t := range totals {
		out = append(out, models.Ranking{
			UserID:         t.UserID,
			Username:       t.Username,
			TotalResponses: t.Total,
			CompletionRate: completionRate(t.Completed, t.Total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalResponses != out[j].TotalResponses {
			return out[i].TotalResponses > out[j].TotalResponses
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(completed) / float64(total)
}

// CategoryStats returns response counts per category name. Categories without responses are omitted.
func (s *Service) CategoryStats(ctx context.Context) ([]models.CategoryStats, error) {
	list, err := s.store.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.CategoryStats, 0, len(list))
	for _, c := range list {
		if c.ResponseCount > 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResponseCount != out[j].ResponseCount {
			return out[i].ResponseCount > out[j].ResponseCount
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

// Top returns the first limit leaderboard positions, from the cache when configured.
func (s *Service) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	if s.cache != nil {
		entries, err := s.cache.Top(ctx, int64(limit))
		if err == nil {
			return s.withUsernames(ctx, entries)
		}
		s.logger.Warn("leaderboard cache read failed, using database", zap.Error(err))
	}

	rankings, err := s.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	if len(rankings) > limit {
		rankings = rankings[:limit]
	}
	out := make([]models.LeaderboardEntry, 0, len(rankings))
	for i, r := range rankings {
		out = append(out, models.LeaderboardEntry{
			Rank:           int64(i + 1),
			UserID:         r.UserID,
			Username:       r.Username,
			TotalResponses: float64(r.TotalResponses),
		})
	}
	return out, nil
}

// Position returns the caller's leaderboard position. Rank 0 means unranked.
func (s *Service) Position(ctx context.Context, userID int64) (*models.LeaderboardEntry, error) {
	if s.cache != nil {
		e, err := s.cache.Rank(ctx, userID)
		if err == nil {
			named, err := s.withUsernames(ctx, []models.LeaderboardEntry{*e})
			if err != nil {
				return nil, err
			}
			return &named[0], nil
		}
		s.logger.Warn("leaderboard cache read failed, using database", zap.Error(err))
	}
	rankings, err := s.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	for i, r := range rankings {
		if r.UserID == userID {
			return &models.LeaderboardEntry{Rank: int64(i + 1), UserID: userID, Username: r.Username, TotalResponses: float64(r.TotalResponses)}, nil
		}
	}
	return &models.LeaderboardEntry{UserID: userID}, nil
}

// RebuildCache replaces the cached leaderboard with database totals.
func (s *Service) RebuildCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	start := time.Now()
	totals, err := s.store.ListResponseTotals(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.Rebuild(ctx, totals); err != nil {
		return err
	}
	s.logger.Info("leaderboard rebuilt", zap.Int("users", len(totals)), zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Service) withUsernames(ctx context.Context, entries []models.LeaderboardEntry) ([]models.LeaderboardEntry, error) {
	if len(entries) == 0 {
		return entries, nil
	}
	totals, err := s.store.ListResponseTotals(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(totals))
	for _, t := range totals {
		names[t.UserID] = t.Username
	}
	for i := range entries {
		entries[i].Username = names[entries[i].UserID]
	}
	return entries, nil
}
