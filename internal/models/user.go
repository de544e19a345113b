package models

import "time"

// UserSummary is the denormalized per-user progress row kept alongside
// the full snapshot document, used for operational listings without
// decoding every document.
type UserSummary struct {
	UserID            string    `json:"user_id"`
	QuizzesTaken      int       `json:"quizzes_taken"`
	QuizzesPassed     int       `json:"quizzes_passed"`
	TopicsCompleted   int       `json:"topics_completed"`
	SectionsCompleted int       `json:"sections_completed"`
	CurrentStreak     int       `json:"current_streak"`
	LongestStreak     int       `json:"longest_streak"`
	LastActivityAt    time.Time `json:"last_activity_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	CreatedAt         time.Time `json:"created_at"`
}

type UserFilter struct {
	ActiveSince     *time.Time
	MinQuizzesTaken int
	Limit           int
	Offset          int
	OrderBy         string
	OrderDir        string
}
