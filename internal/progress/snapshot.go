package progress

import (
	"sort"
	"time"
)

// DefaultRecentAttempts is the limit RecentAttempts applies when the
// caller passes a non-positive one.
const DefaultRecentAttempts = 10

// Snapshot is one immutable version of a user's complete progress state.
// All transformation methods return a new Snapshot and leave the receiver
// untouched, so values can be shared freely; serializing updates per user
// is the orchestration layer's job.
type Snapshot struct {
	completedTopics    map[string]struct{}
	completedSections  map[string]struct{}
	sectionProgress    map[string]SectionProgress
	quizAttempts       []Attempt
	bestScores         map[string]float64
	topicAttemptCounts map[string]int
	topicTimeSpent     map[string]time.Duration
	lastActivityDate   time.Time
	totalQuizzesTaken  int
	totalQuizzesPassed int
	currentStreak      int
	longestStreak      int
	lastStreakDate     time.Time
}

// Empty returns the snapshot of a user with no recorded activity.
func Empty() Snapshot {
	return Snapshot{}
}

// clone deep-copies the snapshot so transformations can mutate the copy.
func (s Snapshot) clone() Snapshot {
	c := s
	c.completedTopics = copySet(s.completedTopics)
	c.completedSections = copySet(s.completedSections)

	c.sectionProgress = make(map[string]SectionProgress, len(s.sectionProgress))
	for k, v := range s.sectionProgress {
		c.sectionProgress[k] = v
	}
	c.bestScores = make(map[string]float64, len(s.bestScores))
	for k, v := range s.bestScores {
		c.bestScores[k] = v
	}
	c.topicAttemptCounts = make(map[string]int, len(s.topicAttemptCounts))
	for k, v := range s.topicAttemptCounts {
		c.topicAttemptCounts[k] = v
	}
	c.topicTimeSpent = make(map[string]time.Duration, len(s.topicTimeSpent))
	for k, v := range s.topicTimeSpent {
		c.topicTimeSpent[k] = v
	}

	c.quizAttempts = make([]Attempt, len(s.quizAttempts), len(s.quizAttempts)+1)
	copy(c.quizAttempts, s.quizAttempts)

	return c
}

func copySet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src)+1)
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsTopicCompleted reports whether the topic's quiz was ever passed.
func (s Snapshot) IsTopicCompleted(topicID string) bool {
	_, ok := s.completedTopics[topicID]
	return ok
}

// IsSectionCompleted reports whether the section's quiz was ever passed.
func (s Snapshot) IsSectionCompleted(sectionID string) bool {
	_, ok := s.completedSections[sectionID]
	return ok
}

// CompletedTopics returns the completed topic IDs in sorted order.
func (s Snapshot) CompletedTopics() []string {
	return sortedKeys(s.completedTopics)
}

// CompletedSections returns the completed section IDs in sorted order.
func (s Snapshot) CompletedSections() []string {
	return sortedKeys(s.completedSections)
}

// SectionProgressFor returns the stored entry for the section, or a
// zero-valued one carrying the section ID when none exists.
func (s Snapshot) SectionProgressFor(sectionID string) SectionProgress {
	if sp, ok := s.sectionProgress[sectionID]; ok {
		return sp
	}
	return SectionProgress{SectionID: sectionID}
}

// SectionProgressAll returns every tracked SectionProgress entry, ordered
// by section ID.
func (s Snapshot) SectionProgressAll() []SectionProgress {
	ids := make([]string, 0, len(s.sectionProgress))
	for id := range s.sectionProgress {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]SectionProgress, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.sectionProgress[id])
	}
	return out
}

// BestScore returns the best recorded score for the topic, or 0.
func (s Snapshot) BestScore(topicID string) float64 {
	return s.bestScores[topicID]
}

// TopicAttemptCount returns how many attempts were recorded for the topic.
func (s Snapshot) TopicAttemptCount(topicID string) int {
	return s.topicAttemptCounts[topicID]
}

// TopicTimeSpent returns the cumulative time recorded against the topic.
func (s Snapshot) TopicTimeSpent(topicID string) time.Duration {
	return s.topicTimeSpent[topicID]
}

// Attempts returns a copy of the full attempt history in recording order.
func (s Snapshot) Attempts() []Attempt {
	out := make([]Attempt, len(s.quizAttempts))
	copy(out, s.quizAttempts)
	return out
}

// TopicAttempts returns the attempts recorded for the topic, preserving
// chronological order.
func (s Snapshot) TopicAttempts(topicID string) []Attempt {
	out := make([]Attempt, 0)
	for _, a := range s.quizAttempts {
		if a.TopicID == topicID {
			out = append(out, a)
		}
	}
	return out
}

// RecentAttempts returns up to limit attempts, most recent first. A
// non-positive limit selects DefaultRecentAttempts.
func (s Snapshot) RecentAttempts(limit int) []Attempt {
	if limit <= 0 {
		limit = DefaultRecentAttempts
	}
	out := make([]Attempt, len(s.quizAttempts))
	copy(out, s.quizAttempts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopicPassRate returns passed/total over the topic's attempts, or 0 when
// the topic has none.
func (s Snapshot) TopicPassRate(topicID string) float64 {
	var total, passed int
	for _, a := range s.quizAttempts {
		if a.TopicID != topicID {
			continue
		}
		total++
		if a.Passed {
			passed++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total)
}

// OverallPassRate returns totalQuizzesPassed/totalQuizzesTaken, or 0 when
// nothing was taken.
func (s Snapshot) OverallPassRate() float64 {
	if s.totalQuizzesTaken == 0 {
		return 0
	}
	return float64(s.totalQuizzesPassed) / float64(s.totalQuizzesTaken)
}

// OverallProgress returns the mean progress percentage across all tracked
// sections, or 0 when none are tracked.
func (s Snapshot) OverallProgress() float64 {
	if len(s.sectionProgress) == 0 {
		return 0
	}
	var sum float64
	for _, sp := range s.sectionProgress {
		sum += sp.ProgressPercentage()
	}
	return sum / float64(len(s.sectionProgress))
}

// TotalTimeSpent returns the sum of time recorded across all topics.
func (s Snapshot) TotalTimeSpent() time.Duration {
	var total time.Duration
	for _, d := range s.topicTimeSpent {
		total += d
	}
	return total
}

// AverageQuizScore returns the mean score across all attempts, or 0 when
// there are none.
func (s Snapshot) AverageQuizScore() float64 {
	if len(s.quizAttempts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range s.quizAttempts {
		sum += a.Score
	}
	return sum / float64(len(s.quizAttempts))
}

// TotalQuizzesTaken returns the lifetime attempt count.
func (s Snapshot) TotalQuizzesTaken() int { return s.totalQuizzesTaken }

// TotalQuizzesPassed returns the lifetime passed-attempt count.
func (s Snapshot) TotalQuizzesPassed() int { return s.totalQuizzesPassed }

// CurrentStreak returns the length of the ongoing run of passed attempts.
func (s Snapshot) CurrentStreak() int { return s.currentStreak }

// LongestStreak returns the longest run of passed attempts ever reached.
func (s Snapshot) LongestStreak() int { return s.longestStreak }

// LastActivityDate returns the timestamp of the most recent attempt, or
// the zero time when none was recorded.
func (s Snapshot) LastActivityDate() time.Time { return s.lastActivityDate }

// LastStreakDate returns the timestamp of the most recent passed attempt,
// or the zero time when none was recorded.
func (s Snapshot) LastStreakDate() time.Time { return s.lastStreakDate }

// Equal reports whether two snapshots carry the same progress state.
// Timestamps are compared with time.Equal so decoded copies match.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.totalQuizzesTaken != other.totalQuizzesTaken ||
		s.totalQuizzesPassed != other.totalQuizzesPassed ||
		s.currentStreak != other.currentStreak ||
		s.longestStreak != other.longestStreak ||
		!s.lastActivityDate.Equal(other.lastActivityDate) ||
		!s.lastStreakDate.Equal(other.lastStreakDate) {
		return false
	}

	if !equalSets(s.completedTopics, other.completedTopics) ||
		!equalSets(s.completedSections, other.completedSections) {
		return false
	}

	if len(s.sectionProgress) != len(other.sectionProgress) {
		return false
	}
	for k, v := range s.sectionProgress {
		if ov, ok := other.sectionProgress[k]; !ok || ov != v {
			return false
		}
	}

	if len(s.bestScores) != len(other.bestScores) {
		return false
	}
	for k, v := range s.bestScores {
		if ov, ok := other.bestScores[k]; !ok || ov != v {
			return false
		}
	}

	if len(s.topicAttemptCounts) != len(other.topicAttemptCounts) {
		return false
	}
	for k, v := range s.topicAttemptCounts {
		if ov, ok := other.topicAttemptCounts[k]; !ok || ov != v {
			return false
		}
	}

	if len(s.topicTimeSpent) != len(other.topicTimeSpent) {
		return false
	}
	for k, v := range s.topicTimeSpent {
		if ov, ok := other.topicTimeSpent[k]; !ok || ov != v {
			return false
		}
	}

	if len(s.quizAttempts) != len(other.quizAttempts) {
		return false
	}
	for i, a := range s.quizAttempts {
		if !a.Equal(other.quizAttempts[i]) {
			return false
		}
	}

	return true
}

func equalSets(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
