package models

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType is the kind of input a question expects.
type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionText           QuestionType = "TEXT"
	QuestionRating         QuestionType = "RATING"
)

// ParseQuestionType converts s (case-insensitive) into a QuestionType.
func ParseQuestionType(s string) (QuestionType, error) {
	switch t := QuestionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case QuestionSingleChoice, QuestionMultipleChoice, QuestionText, QuestionRating:
		return t, nil
	}
	return "", fmt.Errorf("invalid question type %q", s)
}

// HasOptions reports whether answers select from predefined options.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice
}

// SurveyCategory groups surveys by topic.
type SurveyCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Survey is a questionnaire authored by an admin.
type Survey struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CategoryID      *int64     `json:"categoryId"`
	CreatedBy       *int64     `json:"createdBy,omitempty"`
	DurationMinutes int        `json:"durationMinutes"`
	ResponseCount   int        `json:"responseCount"`
	Questions       []Question `json:"questions"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Question returns the survey question with the given id.
func (s *Survey) Question(id int64) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

// Question is a single item of a survey. OrderNumber defines presentation order.
type Question struct {
	ID          int64            `json:"id"`
	SurveyID    int64            `json:"-"`
	Text        string           `json:"questionText"`
	Type        QuestionType     `json:"questionType"`
	OrderNumber int              `json:"orderNumber"`
	Required    bool             `json:"required"`
	Options     []QuestionOption `json:"options"`
}

// Option returns the question option with the given id.
func (q *Question) Option(id int64) (*QuestionOption, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// QuestionOption is a selectable answer of a choice question.
type QuestionOption struct {
	ID          int64  `json:"id"`
	QuestionID  int64  `json:"-"`
	OptionText  string `json:"optionText"`
	OrderNumber int    `json:"orderNumber"`
}
