package progress

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordQuizAttempt returns a new snapshot with the attempt appended and
// every dependent aggregate updated in the same step: best score, per-topic
// counters, completion sets, activity date, lifetime totals, and streak.
// Inputs are trusted; out-of-range scores or counts pass through as given.
func (s Snapshot) RecordQuizAttempt(in AttemptInput) Snapshot {
	return s.record(in, uuid.NewString(), time.Now().UTC())
}

func (s Snapshot) record(in AttemptInput, id string, now time.Time) Snapshot {
	c := s.clone()

	// Time is tracked at millisecond precision, matching the stored
	// document encoding.
	timeSpent := in.TimeSpent.Truncate(time.Millisecond)

	c.quizAttempts = append(c.quizAttempts, Attempt{
		ID:             id,
		TopicID:        in.TopicID,
		SectionID:      in.SectionID,
		Timestamp:      now,
		Score:          in.Score,
		Passed:         in.Passed,
		TimeSpent:      timeSpent,
		TotalQuestions: in.TotalQuestions,
		CorrectAnswers: in.CorrectAnswers,
		TopicQuiz:      in.TopicQuiz,
	})

	if in.TopicID != "" {
		if in.Score > c.bestScores[in.TopicID] {
			c.bestScores[in.TopicID] = in.Score
		}
		c.topicAttemptCounts[in.TopicID]++
		c.topicTimeSpent[in.TopicID] += timeSpent
	}

	// A passed attempt completes exactly one of the two sets, selected by
	// the attempt kind. Empty identifiers are ignored.
	if in.Passed {
		if in.TopicQuiz {
			if in.TopicID != "" {
				c.completedTopics[in.TopicID] = struct{}{}
			}
		} else if in.SectionID != "" {
			c.completedSections[in.SectionID] = struct{}{}
		}
	}

	c.lastActivityDate = now
	c.totalQuizzesTaken++
	if in.Passed {
		c.totalQuizzesPassed++
	}

	// The streak is a run-length counter over consecutive passed attempts,
	// not a calendar-day streak. A failure resets the current run but
	// leaves the record and its date alone.
	if in.Passed {
		c.currentStreak++
		if c.currentStreak > c.longestStreak {
			c.longestStreak = c.currentStreak
		}
		c.lastStreakDate = now
	} else {
		c.currentStreak = 0
	}

	return c
}

// CompleteTopicQuiz records the pass/fail shorthand used by clients that
// report topic completion without question-level detail.
func (s Snapshot) CompleteTopicQuiz(topicID string, passed bool) Snapshot {
	var score float64
	var correct int
	if passed {
		score = 1.0
		correct = 1
	}
	return s.RecordQuizAttempt(AttemptInput{
		TopicID:        topicID,
		Score:          score,
		Passed:         passed,
		TotalQuestions: 1,
		CorrectAnswers: correct,
		TopicQuiz:      true,
	})
}

// CompleteSectionQuiz is the section-level counterpart of CompleteTopicQuiz.
func (s Snapshot) CompleteSectionQuiz(sectionID string, passed bool) Snapshot {
	var score float64
	var correct int
	if passed {
		score = 1.0
		correct = 1
	}
	return s.RecordQuizAttempt(AttemptInput{
		SectionID:      sectionID,
		Score:          score,
		Passed:         passed,
		TotalQuestions: 1,
		CorrectAnswers: correct,
		TopicQuiz:      false,
	})
}

// UpdateSectionProgress returns a new snapshot whose entry for sectionID is
// recomputed against the given topic total. Completed topics are counted by
// section-ID prefix, so topic IDs must be namespaced "sectionID/topic" for
// the count to be right; the catalog warns about violations at load time.
// Other sections' entries are untouched; an unknown section gets a fresh
// entry.
func (s Snapshot) UpdateSectionProgress(sectionID string, totalTopics int) Snapshot {
	c := s.clone()

	completed := 0
	for topicID := range c.completedTopics {
		if strings.HasPrefix(topicID, sectionID) {
			completed++
		}
	}

	_, quizDone := c.completedSections[sectionID]
	c.sectionProgress[sectionID] = SectionProgress{
		SectionID:            sectionID,
		TopicsCompleted:      completed,
		TotalTopics:          totalTopics,
		SectionQuizCompleted: quizDone,
	}

	return c
}
