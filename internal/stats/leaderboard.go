package stats

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/survey-app/backend/internal/models"
)

// LeaderboardKey is the sorted set of user id -> total responses.
const LeaderboardKey = "leaderboard:responses"

// Leaderboard keeps response counts in a Redis sorted set.
type Leaderboard struct {
	client *redis.Client
}

// NewLeaderboard creates a Redis-backed leaderboard.
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func member(userID int64) string { return strconv.FormatInt(userID, 10) }

// Incr adds one response to the user's score.
func (l *Leaderboard) Incr(ctx context.Context, userID int64) error {
	return l.client.ZIncrBy(ctx, LeaderboardKey, 1, member(userID)).Err()
}

// Top returns the highest scores, 1-indexed. Equal scores are ordered by user id ascending.
func (l *Leaderboard) Top(ctx context.Context, limit int64) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		return []models.LeaderboardEntry{}, nil
	}
	page, err := l.client.ZRevRangeWithScores(ctx, LeaderboardKey, limit-1, limit-1).Result()
	if err != nil {
		return nil, err
	}
	// Members tied with the last position may sort either side of the cut, so read the whole tie group.
	floor := "-inf"
	if len(page) == 1 {
		floor = formatScore(page[0].Score)
	}
	results, err := l.client.ZRevRangeByScoreWithScores(ctx, LeaderboardKey, &redis.ZRangeBy{Min: floor, Max: "+inf"}).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]models.LeaderboardEntry, 0, len(results))
	for _, z := range results {
		m, _ := z.Member.(string)
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{UserID: id, TotalResponses: z.Score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalResponses != entries[j].TotalResponses {
			return entries[i].TotalResponses > entries[j].TotalResponses
		}
		return entries[i].UserID < entries[j].UserID
	})
	if int64(len(entries)) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = int64(i) + 1
	}
	return entries, nil
}

// Rank returns the user's 1-indexed position and score. Rank 0 means the user has no score.
func (l *Leaderboard) Rank(ctx context.Context, userID int64) (*models.LeaderboardEntry, error) {
	e := &models.LeaderboardEntry{UserID: userID}
	score, err := l.client.ZScore(ctx, LeaderboardKey, member(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return e, nil
	}
	if err != nil {
		return nil, err
	}
	s := formatScore(score)
	higher, err := l.client.ZCount(ctx, LeaderboardKey, "("+s, "+inf").Result()
	if err != nil {
		return nil, err
	}
	tied, err := l.client.ZRangeByScore(ctx, LeaderboardKey, &redis.ZRangeBy{Min: s, Max: s}).Result()
	if err != nil {
		return nil, err
	}
	ahead := int64(0)
	for _, m := range tied {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil && id < userID {
			ahead++
		}
	}
	e.Rank = higher + ahead + 1
	e.TotalResponses = score
	return e, nil
}

func formatScore(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Rebuild atomically replaces the set with totals.
func (l *Leaderboard) Rebuild(ctx context.Context, totals []models.ResponseTotals) error {
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, LeaderboardKey)
		if len(totals) == 0 {
			return nil
		}
		members := make([]redis.Z, 0, len(totals))
		for _, t := range totals {
			members = append(members, redis.Z{Score: float64(t.Total), Member: member(t.UserID)})
		}
		pipe.ZAdd(ctx, LeaderboardKey, members...)
		return nil
	})
	return err
}
