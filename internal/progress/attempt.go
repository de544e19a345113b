package progress

import (
	"encoding/json"
	"time"
)

// Attempt is one graded quiz submission. Attempts are immutable and
// append-only; once recorded they are never modified or removed.
type Attempt struct {
	ID             string
	TopicID        string
	SectionID      string
	Timestamp      time.Time
	Score          float64
	Passed         bool
	TimeSpent      time.Duration
	TotalQuestions int
	CorrectAnswers int
	TopicQuiz      bool
}

// AttemptInput carries the caller-supplied portion of a quiz attempt.
// Passed is supplied by the caller, not derived from Score; the passing
// threshold is a client concern.
type AttemptInput struct {
	TopicID        string
	SectionID      string
	Score          float64
	Passed         bool
	TimeSpent      time.Duration
	TotalQuestions int
	CorrectAnswers int
	TopicQuiz      bool
}

// Accuracy returns CorrectAnswers/TotalQuestions, or 0 when the attempt
// had no questions.
func (a Attempt) Accuracy() float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return float64(a.CorrectAnswers) / float64(a.TotalQuestions)
}

// IncorrectAnswers returns the number of questions answered wrong.
func (a Attempt) IncorrectAnswers() int {
	return a.TotalQuestions - a.CorrectAnswers
}

// AverageTimePerQuestion returns TimeSpent/TotalQuestions, or 0 when the
// attempt had no questions.
func (a Attempt) AverageTimePerQuestion() time.Duration {
	if a.TotalQuestions == 0 {
		return 0
	}
	return a.TimeSpent / time.Duration(a.TotalQuestions)
}

// Equal reports whether two attempts are the same, comparing timestamps
// with time.Equal so decoded copies match their originals.
func (a Attempt) Equal(other Attempt) bool {
	return a.ID == other.ID &&
		a.TopicID == other.TopicID &&
		a.SectionID == other.SectionID &&
		a.Timestamp.Equal(other.Timestamp) &&
		a.Score == other.Score &&
		a.Passed == other.Passed &&
		a.TimeSpent == other.TimeSpent &&
		a.TotalQuestions == other.TotalQuestions &&
		a.CorrectAnswers == other.CorrectAnswers &&
		a.TopicQuiz == other.TopicQuiz
}

// attemptDoc is the stored document form of an Attempt. Field names match
// the app's existing progress documents; durations are integer milliseconds.
type attemptDoc struct {
	ID             string    `json:"id"`
	TopicID        string    `json:"topicId"`
	SectionID      string    `json:"sectionId"`
	Timestamp      time.Time `json:"timestamp"`
	Score          float64   `json:"score"`
	Passed         bool      `json:"passed"`
	TimeSpentMS    int64     `json:"timeSpent"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	TopicQuiz      bool      `json:"isTopicQuiz"`
}

// MarshalJSON encodes the attempt in the stored document schema.
func (a Attempt) MarshalJSON() ([]byte, error) {
	return json.Marshal(attemptDoc{
		ID:             a.ID,
		TopicID:        a.TopicID,
		SectionID:      a.SectionID,
		Timestamp:      a.Timestamp,
		Score:          a.Score,
		Passed:         a.Passed,
		TimeSpentMS:    a.TimeSpent.Milliseconds(),
		TotalQuestions: a.TotalQuestions,
		CorrectAnswers: a.CorrectAnswers,
		TopicQuiz:      a.TopicQuiz,
	})
}

// UnmarshalJSON decodes the stored document schema.
func (a *Attempt) UnmarshalJSON(data []byte) error {
	var doc attemptDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*a = Attempt{
		ID:             doc.ID,
		TopicID:        doc.TopicID,
		SectionID:      doc.SectionID,
		Timestamp:      doc.Timestamp,
		Score:          doc.Score,
		Passed:         doc.Passed,
		TimeSpent:      time.Duration(doc.TimeSpentMS) * time.Millisecond,
		TotalQuestions: doc.TotalQuestions,
		CorrectAnswers: doc.CorrectAnswers,
		TopicQuiz:      doc.TopicQuiz,
	}
	return nil
}
