package api

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tonica-app/tonica/internal/errors"
	"github.com/tonica-app/tonica/internal/progress"
)

// validate is shared by all handlers. Field names in messages come from
// the json tags so clients see the names they actually sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct collapses validator failures into one AppError carrying
// every violated field.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.NewInternalError(err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return errors.NewValidationError(verrs[0].Field(), strings.Join(msgs, "; "))
}

// recordAttemptRequest mirrors the stored attempt document schema:
// camelCase keys, timeSpent in milliseconds.
type recordAttemptRequest struct {
	TopicID        string  `json:"topicId" validate:"required_without=SectionID"`
	SectionID      string  `json:"sectionId" validate:"required_without=TopicID"`
	Score          float64 `json:"score" validate:"gte=0,lte=1"`
	Passed         bool    `json:"passed"`
	TimeSpent      int64   `json:"timeSpent" validate:"gte=0"`
	TotalQuestions int     `json:"totalQuestions" validate:"gte=0"`
	CorrectAnswers int     `json:"correctAnswers" validate:"gte=0,ltefield=TotalQuestions"`
	IsTopicQuiz    bool    `json:"isTopicQuiz"`
}

func (req recordAttemptRequest) input() progress.AttemptInput {
	return progress.AttemptInput{
		TopicID:        req.TopicID,
		SectionID:      req.SectionID,
		Score:          req.Score,
		Passed:         req.Passed,
		TimeSpent:      time.Duration(req.TimeSpent) * time.Millisecond,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
		TopicQuiz:      req.IsTopicQuiz,
	}
}

// completeQuizRequest uses a pointer so a missing "passed" is rejected
// instead of silently reading as false.
type completeQuizRequest struct {
	Passed *bool `json:"passed" validate:"required"`
}
