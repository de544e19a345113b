package progress

import (
	"encoding/json"
	"time"
)

// Stats is the read-only summary projection clients render on the
// progress dashboard. DaysSinceLastActivity is -1 for a user who never
// recorded an attempt.
type Stats struct {
	TopicsCompleted       int
	SectionsCompleted     int
	QuizzesTaken          int
	QuizzesPassed         int
	PassRate              float64
	AverageScore          float64
	TotalTimeSpent        time.Duration
	OverallProgress       float64
	CurrentStreak         int
	LongestStreak         int
	LastActivityDate      time.Time
	DaysSinceLastActivity int
}

// Stats projects the snapshot's aggregates relative to now.
func (s Snapshot) Stats(now time.Time) Stats {
	days := -1
	if !s.lastActivityDate.IsZero() {
		days = int(now.Sub(s.lastActivityDate).Hours() / 24)
	}
	return Stats{
		TopicsCompleted:       len(s.completedTopics),
		SectionsCompleted:     len(s.completedSections),
		QuizzesTaken:          s.totalQuizzesTaken,
		QuizzesPassed:         s.totalQuizzesPassed,
		PassRate:              s.OverallPassRate(),
		AverageScore:          s.AverageQuizScore(),
		TotalTimeSpent:        s.TotalTimeSpent(),
		OverallProgress:       s.OverallProgress(),
		CurrentStreak:         s.currentStreak,
		LongestStreak:         s.longestStreak,
		LastActivityDate:      s.lastActivityDate,
		DaysSinceLastActivity: days,
	}
}

type statsDoc struct {
	TopicsCompleted       int        `json:"topicsCompleted"`
	SectionsCompleted     int        `json:"sectionsCompleted"`
	QuizzesTaken          int        `json:"quizzesTaken"`
	QuizzesPassed         int        `json:"quizzesPassed"`
	PassRate              float64    `json:"passRate"`
	AverageScore          float64    `json:"averageScore"`
	TotalTimeSpentMS      int64      `json:"totalTimeSpent"`
	OverallProgress       float64    `json:"overallProgress"`
	CurrentStreak         int        `json:"currentStreak"`
	LongestStreak         int        `json:"longestStreak"`
	LastActivityDate      *time.Time `json:"lastActivityDate,omitempty"`
	DaysSinceLastActivity int        `json:"daysSinceLastActivity"`
}

// MarshalJSON encodes the stats in the document schema used by the rest
// of the progress payloads.
func (st Stats) MarshalJSON() ([]byte, error) {
	doc := statsDoc{
		TopicsCompleted:       st.TopicsCompleted,
		SectionsCompleted:     st.SectionsCompleted,
		QuizzesTaken:          st.QuizzesTaken,
		QuizzesPassed:         st.QuizzesPassed,
		PassRate:              st.PassRate,
		AverageScore:          st.AverageScore,
		TotalTimeSpentMS:      st.TotalTimeSpent.Milliseconds(),
		OverallProgress:       st.OverallProgress,
		CurrentStreak:         st.CurrentStreak,
		LongestStreak:         st.LongestStreak,
		DaysSinceLastActivity: st.DaysSinceLastActivity,
	}
	if !st.LastActivityDate.IsZero() {
		t := st.LastActivityDate
		doc.LastActivityDate = &t
	}
	return json.Marshal(doc)
}
