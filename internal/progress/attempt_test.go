package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tonica-app/tonica/internal/progress"
)

func TestAttemptAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		correct  int
		expected float64
	}{
		{
			name:     "all correct",
			total:    10,
			correct:  10,
			expected: 1.0,
		},
		{
			name:     "partial",
			total:    10,
			correct:  7,
			expected: 0.7,
		},
		{
			name:     "none correct",
			total:    5,
			correct:  0,
			expected: 0.0,
		},
		{
			name:     "no questions",
			total:    0,
			correct:  0,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := progress.Attempt{TotalQuestions: tt.total, CorrectAnswers: tt.correct}
			assert.InDelta(t, tt.expected, a.Accuracy(), 1e-9)
		})
	}
}

func TestAttemptIncorrectAnswers(t *testing.T) {
	a := progress.Attempt{TotalQuestions: 12, CorrectAnswers: 9}
	assert.Equal(t, 3, a.IncorrectAnswers())
}

func TestAttemptAverageTimePerQuestion(t *testing.T) {
	a := progress.Attempt{TimeSpent: 2 * time.Minute, TotalQuestions: 8}
	assert.Equal(t, 15*time.Second, a.AverageTimePerQuestion())

	empty := progress.Attempt{TimeSpent: 2 * time.Minute}
	assert.Equal(t, time.Duration(0), empty.AverageTimePerQuestion(), "no questions should yield zero average")
}

func TestAttemptEqual(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	a := progress.Attempt{
		ID:             "a1",
		TopicID:        "harmony/triads",
		Timestamp:      ts,
		Score:          0.8,
		Passed:         true,
		TimeSpent:      90 * time.Second,
		TotalQuestions: 10,
		CorrectAnswers: 8,
		TopicQuiz:      true,
	}

	same := a
	same.Timestamp = ts.In(time.FixedZone("UTC+2", 2*3600))
	assert.True(t, a.Equal(same), "same instant in another zone should still be equal")

	diff := a
	diff.Score = 0.9
	assert.False(t, a.Equal(diff))
}
