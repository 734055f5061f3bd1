package models

import (
	"strings"
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	Identification QuestionType = "identification"
	Enumeration    QuestionType = "enumeration"
	LongAnswer     QuestionType = "long_answer"
)

// Question always hangs off the source quiz; assigned copies resolve to the
// source id before loading questions.
type Question struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	QuizID    uint         `json:"quiz_id" gorm:"not null;index"`
	Type      QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`
	Prompt    string       `json:"prompt" gorm:"type:text;not null" validate:"required"`
	AnswerKey string       `json:"answer_key" gorm:"type:text"`
	Options   []string     `json:"options" gorm:"serializer:json;type:jsonb"`
	Points    float64      `json:"points" gorm:"not null;default:1" validate:"gt=0"`
	ImageURL  *string      `json:"image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// EffectiveType applies the ingestion coercions once, so scoring code never
// re-interprets raw type strings: a multiple-choice question with fewer than
// two options is graded as identification.
func (q *Question) EffectiveType() QuestionType {
	if q.Type == MultipleChoice && len(q.Options) < 2 {
		return Identification
	}
	return q.Type
}

// KeyItems splits an enumeration answer key into its expected items.
func (q *Question) KeyItems() []string {
	var items []string
	for _, part := range strings.FieldsFunc(q.AnswerKey, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';'
	}) {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

// PerItemScoring reports whether the enumeration question is in per-item
// credit mode. The mode is encoded only as Points == expected item count,
// so editing the key's item count can flip the mode.
func (q *Question) PerItemScoring() bool {
	if q.Type != Enumeration {
		return false
	}
	n := len(q.KeyItems())
	return n > 0 && q.Points == float64(n)
}

// Gradable reports whether the question participates in max-score
// computation. Long answers without a teacher key cannot be auto-graded and
// are excluded entirely.
func (q *Question) Gradable() bool {
	if q.EffectiveType() == LongAnswer {
		return strings.TrimSpace(q.AnswerKey) != ""
	}
	return true
}
