package progress

import (
	"encoding/json"
	"time"
)

// snapshotDoc is the stored document form of a Snapshot. It keeps the
// field names of the app's existing cloud documents: sets as arrays,
// durations as integer milliseconds, timestamps as RFC 3339 strings,
// absent dates omitted.
type snapshotDoc struct {
	CompletedTopics    []string                   `json:"completedTopics"`
	CompletedSections  []string                   `json:"completedSections"`
	SectionProgress    map[string]SectionProgress `json:"sectionProgress"`
	QuizAttempts       []Attempt                  `json:"quizAttempts"`
	BestScores         map[string]float64         `json:"bestScores"`
	TopicAttemptCounts map[string]int             `json:"topicAttemptCounts"`
	TopicTimeSpentMS   map[string]int64           `json:"topicTimeSpent"`
	LastActivityDate   *time.Time                 `json:"lastActivityDate,omitempty"`
	TotalQuizzesTaken  int                        `json:"totalQuizzesTaken"`
	TotalQuizzesPassed int                        `json:"totalQuizzesPassed"`
	CurrentStreak      int                        `json:"currentStreak"`
	LongestStreak      int                        `json:"longestStreak"`
	LastStreakDate     *time.Time                 `json:"lastStreakDate,omitempty"`
}

// MarshalJSON encodes the snapshot in the stored document schema. Set
// order is not significant; the encoder sorts for stable output.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	doc := snapshotDoc{
		CompletedTopics:    s.CompletedTopics(),
		CompletedSections:  s.CompletedSections(),
		SectionProgress:    make(map[string]SectionProgress, len(s.sectionProgress)),
		QuizAttempts:       s.Attempts(),
		BestScores:         make(map[string]float64, len(s.bestScores)),
		TopicAttemptCounts: make(map[string]int, len(s.topicAttemptCounts)),
		TopicTimeSpentMS:   make(map[string]int64, len(s.topicTimeSpent)),
		TotalQuizzesTaken:  s.totalQuizzesTaken,
		TotalQuizzesPassed: s.totalQuizzesPassed,
		CurrentStreak:      s.currentStreak,
		LongestStreak:      s.longestStreak,
	}
	for k, v := range s.sectionProgress {
		doc.SectionProgress[k] = v
	}
	for k, v := range s.bestScores {
		doc.BestScores[k] = v
	}
	for k, v := range s.topicAttemptCounts {
		doc.TopicAttemptCounts[k] = v
	}
	for k, v := range s.topicTimeSpent {
		doc.TopicTimeSpentMS[k] = v.Milliseconds()
	}
	if !s.lastActivityDate.IsZero() {
		t := s.lastActivityDate
		doc.LastActivityDate = &t
	}
	if !s.lastStreakDate.IsZero() {
		t := s.lastStreakDate
		doc.LastStreakDate = &t
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the stored document schema. Missing collections
// decode as empty ones.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := Snapshot{
		completedTopics:    make(map[string]struct{}, len(doc.CompletedTopics)),
		completedSections:  make(map[string]struct{}, len(doc.CompletedSections)),
		sectionProgress:    make(map[string]SectionProgress, len(doc.SectionProgress)),
		bestScores:         make(map[string]float64, len(doc.BestScores)),
		topicAttemptCounts: make(map[string]int, len(doc.TopicAttemptCounts)),
		topicTimeSpent:     make(map[string]time.Duration, len(doc.TopicTimeSpentMS)),
		quizAttempts:       doc.QuizAttempts,
		totalQuizzesTaken:  doc.TotalQuizzesTaken,
		totalQuizzesPassed: doc.TotalQuizzesPassed,
		currentStreak:      doc.CurrentStreak,
		longestStreak:      doc.LongestStreak,
	}
	for _, t := range doc.CompletedTopics {
		out.completedTopics[t] = struct{}{}
	}
	for _, sec := range doc.CompletedSections {
		out.completedSections[sec] = struct{}{}
	}
	for k, v := range doc.SectionProgress {
		// The map key is authoritative for older documents that left the
		// embedded sectionId blank.
		if v.SectionID == "" {
			v.SectionID = k
		}
		out.sectionProgress[k] = v
	}
	for k, v := range doc.BestScores {
		out.bestScores[k] = v
	}
	for k, v := range doc.TopicAttemptCounts {
		out.topicAttemptCounts[k] = v
	}
	for k, v := range doc.TopicTimeSpentMS {
		out.topicTimeSpent[k] = time.Duration(v) * time.Millisecond
	}
	if doc.LastActivityDate != nil {
		out.lastActivityDate = *doc.LastActivityDate
	}
	if doc.LastStreakDate != nil {
		out.lastStreakDate = *doc.LastStreakDate
	}
	if out.quizAttempts == nil {
		out.quizAttempts = []Attempt{}
	}

	*s = out
	return nil
}
