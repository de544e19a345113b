package progress_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonica-app/tonica/internal/progress"
)

var testBase = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

// recordSeq records one attempt per input with ascending timestamps one
// minute apart, so ordering assertions are deterministic.
func recordSeq(s progress.Snapshot, inputs ...progress.AttemptInput) progress.Snapshot {
	for i, in := range inputs {
		s = progress.RecordAt(s, in, fmt.Sprintf("a%d", i+1), testBase.Add(time.Duration(i)*time.Minute))
	}
	return s
}

func TestSectionProgressFor_Default(t *testing.T) {
	sp := progress.Empty().SectionProgressFor("unknown")

	assert.Equal(t, "unknown", sp.SectionID)
	assert.Zero(t, sp.TopicsCompleted)
	assert.Zero(t, sp.TotalTopics)
	assert.False(t, sp.SectionQuizCompleted)
}

func TestBestScore_Default(t *testing.T) {
	assert.Zero(t, progress.Empty().BestScore("never-attempted"))
}

func TestTopicAttempts_FilterPreservesOrder(t *testing.T) {
	s := recordSeq(progress.Empty(),
		progress.AttemptInput{TopicID: "ear/intervals", Score: 0.3, TotalQuestions: 10, CorrectAnswers: 3, TopicQuiz: true},
		progress.AttemptInput{TopicID: "ear/chords", Score: 0.5, TotalQuestions: 10, CorrectAnswers: 5, TopicQuiz: true},
		progress.AttemptInput{TopicID: "ear/intervals", Score: 0.8, Passed: true, TotalQuestions: 10, CorrectAnswers: 8, TopicQuiz: true},
	)

	attempts := s.TopicAttempts("ear/intervals")
	require.Len(t, attempts, 2)
	assert.Equal(t, "a1", attempts[0].ID)
	assert.Equal(t, "a3", attempts[1].ID)
	assert.True(t, attempts[0].Timestamp.Before(attempts[1].Timestamp), "filter keeps chronological order")

	assert.Empty(t, s.TopicAttempts("ear/melody"))
}

func TestRecentAttempts_DescendingWithLimit(t *testing.T) {
	inputs := make([]progress.AttemptInput, 12)
	for i := range inputs {
		inputs[i] = progress.AttemptInput{TopicID: "theory/keys", Score: 0.5, TotalQuestions: 2, CorrectAnswers: 1, TopicQuiz: true}
	}
	s := recordSeq(progress.Empty(), inputs...)

	recent := s.RecentAttempts(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "a12", recent[0].ID, "most recent attempt comes first")
	assert.Equal(t, "a11", recent[1].ID)
	assert.Equal(t, "a10", recent[2].ID)
}

func TestRecentAttempts_DefaultLimit(t *testing.T) {
	inputs := make([]progress.AttemptInput, 12)
	for i := range inputs {
		inputs[i] = progress.AttemptInput{TopicID: "theory/keys", Score: 0.5, TotalQuestions: 2, CorrectAnswers: 1, TopicQuiz: true}
	}
	s := recordSeq(progress.Empty(), inputs...)

	assert.Len(t, s.RecentAttempts(0), progress.DefaultRecentAttempts)
	assert.Len(t, s.RecentAttempts(-5), progress.DefaultRecentAttempts)
}

func TestRecentAttempts_FewerThanLimit(t *testing.T) {
	s := recordSeq(progress.Empty(),
		progress.AttemptInput{TopicID: "theory/keys", Score: 0.5, TotalQuestions: 2, CorrectAnswers: 1, TopicQuiz: true},
	)

	assert.Len(t, s.RecentAttempts(10), 1)
}

func TestTopicPassRate(t *testing.T) {
	s := recordSeq(progress.Empty(),
		progress.AttemptInput{TopicID: "scales/modes", Passed: true, Score: 0.9, TotalQuestions: 10, CorrectAnswers: 9, TopicQuiz: true},
		progress.AttemptInput{TopicID: "scales/modes", Passed: false, Score: 0.4, TotalQuestions: 10, CorrectAnswers: 4, TopicQuiz: true},
		progress.AttemptInput{TopicID: "scales/modes", Passed: true, Score: 0.8, TotalQuestions: 10, CorrectAnswers: 8, TopicQuiz: true},
		progress.AttemptInput{TopicID: "scales/pentatonic", Passed: false, Score: 0.2, TotalQuestions: 10, CorrectAnswers: 2, TopicQuiz: true},
	)

	assert.InDelta(t, 2.0/3.0, s.TopicPassRate("scales/modes"), 1e-9)
	assert.Zero(t, s.TopicPassRate("scales/blues"), "no attempts means zero rate, not NaN")
}

func TestOverallPassRate_EmptySnapshot(t *testing.T) {
	assert.Zero(t, progress.Empty().OverallPassRate())
}

func TestOverallPassRate(t *testing.T) {
	s := recordSeq(progress.Empty(),
		progress.AttemptInput{TopicID: "a", Passed: true, TotalQuestions: 1, CorrectAnswers: 1, TopicQuiz: true},
		progress.AttemptInput{TopicID: "b", Passed: false, TotalQuestions: 1, TopicQuiz: true},
		progress.AttemptInput{TopicID: "c", Passed: true, TotalQuestions: 1, CorrectAnswers: 1, TopicQuiz: true},
		progress.AttemptInput{TopicID: "d", Passed: true, TotalQuestions: 1, CorrectAnswers: 1, TopicQuiz: true},
	)

	assert.InDelta(t, 0.75, s.OverallPassRate(), 1e-9)
}

func TestOverallProgress(t *testing.T) {
	s := progress.Empty().
		CompleteTopicQuiz("harmony/triads", true).
		UpdateSectionProgress("harmony", 2).
		UpdateSectionProgress("rhythm", 4)

	// harmony at 1/2, rhythm at 0/4.
	assert.InDelta(t, 0.25, s.OverallProgress(), 1e-9)
	assert.Zero(t, progress.Empty().OverallProgress(), "no tracked sections means zero progress")
}

func TestTotalTimeSpent(t *testing.T) {
	s := recordSeq(progress.Empty(),
		progress.AttemptInput{TopicID: "a", TimeSpent: 90 * time.Second, TotalQuestions: 5, CorrectAnswers: 2, TopicQuiz: true},
		progress.AttemptInput{TopicID: "b", TimeSpent: 30 * time.Second, TotalQuestions: 5, CorrectAnswers: 2, TopicQuiz: true},
		progress.AttemptInput{TopicID: "a", TimeSpent: 60 * time.Second, TotalQuestions: 5, CorrectAnswers: 2, TopicQuiz: true},
	)

	assert.Equal(t, 3*time.Minute, s.TotalTimeSpent())
	assert.Equal(t, 150*time.Second, s.TopicTimeSpent("a"), "per-topic time accumulates")
}

func TestAverageQuizScore(t *testing.T) {
	s := recordSeq(progress.Empty(),
		progress.AttemptInput{TopicID: "a", Score: 0.4, TotalQuestions: 5, CorrectAnswers: 2, TopicQuiz: true},
		progress.AttemptInput{TopicID: "b", Score: 0.8, TotalQuestions: 5, CorrectAnswers: 4, TopicQuiz: true},
	)

	assert.InDelta(t, 0.6, s.AverageQuizScore(), 1e-9)
	assert.Zero(t, progress.Empty().AverageQuizScore())
}

func TestCompletedSetsSorted(t *testing.T) {
	s := progress.Empty().
		CompleteTopicQuiz("z/last", true).
		CompleteTopicQuiz("a/first", true).
		CompleteTopicQuiz("m/middle", true)

	assert.Equal(t, []string{"a/first", "m/middle", "z/last"}, s.CompletedTopics())
}
