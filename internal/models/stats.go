package models

import "time"

// SurveyStats summarizes how many surveys a user has taken.
type SurveyStats struct {
	TotalSurveys     int `json:"totalSurveys"`
	CompletedSurveys int `json:"completedSurveys"`
	AvailableSurveys int `json:"availableSurveys"`
}

// DashboardStats is the per-user dashboard.
type DashboardStats struct {
	TotalCompleted int            `json:"totalCompleted"`
	RecentSurveys  []RecentSurvey `json:"recentSurveys"`
}

// RecentSurvey is a recently completed survey. CompletedAt is an ISO local date-time.
type RecentSurvey struct {
	Title       string `json:"title"`
	CompletedAt string `json:"completedAt"`
}

// Ranking is one leaderboard row.
type Ranking struct {
	UserID         int64   `json:"userId"`
	Username       string  `json:"username"`
	TotalResponses int     `json:"totalResponses"`
	CompletionRate float64 `json:"completionRate"`
}

// CategoryStats is the number of responses in a category.
type CategoryStats struct {
	CategoryName  string `json:"categoryName"`
	ResponseCount int    `json:"responseCount"`
}

// ResponseActivity is a user's response with its survey resolved.
type ResponseActivity struct {
	ResponseID  int64
	SurveyID    int64
	SurveyTitle string
	CompletedAt *time.Time
}

// ResponseTotals counts a user's responses.
type ResponseTotals struct {
	UserID    int64
	Username  string
	Total     int
	Completed int
}

// LeaderboardEntry is a cached leaderboard position.
type LeaderboardEntry struct {
	Rank           int64   `json:"rank"`
	UserID         int64   `json:"userId"`
	Username       string  `json:"username,omitempty"`
	TotalResponses float64 `json:"totalResponses"`
}
