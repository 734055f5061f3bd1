package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SubmissionSource string

const (
	SourceManual      SubmissionSource = "manual"
	SourceAutoTimeout SubmissionSource = "auto_timeout"
	SourceAutoLeave   SubmissionSource = "auto_leave" // tab switch / window close
)

// RawAnswer is one answered question inside the bundle.
type RawAnswer struct {
	QuestionID uint   `json:"questionId"`
	Answer     string `json:"answer"`
}

// AnswerBundle is the fixed three-key shape the client submits and the log
// stores. Long-answer responses ride the identification bucket by
// convention; the routing is explicit here, never inferred downstream.
type AnswerBundle struct {
	MultipleChoice []RawAnswer `json:"multiple_choice"`
	Identification []RawAnswer `json:"identification"`
	Enumeration    []RawAnswer `json:"enumeration"`
}

// ForQuestion returns the student's raw answer for a question, routed by the
// question's effective type.
func (b *AnswerBundle) ForQuestion(q *Question) (string, bool) {
	var bucket []RawAnswer
	switch q.EffectiveType() {
	case MultipleChoice:
		bucket = b.MultipleChoice
	case Enumeration:
		bucket = b.Enumeration
	default: // identification and long answer share a bucket
		bucket = b.Identification
	}
	for _, a := range bucket {
		if a.QuestionID == q.ID {
			return a.Answer, true
		}
	}
	return "", false
}

// QuizAttempt is one row of the append-only attempt log. Once submitted it
// is immutable except for Score/MaxScore, which only the recheck path may
// rewrite.
type QuizAttempt struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	QuizID    uint `json:"quiz_id" gorm:"not null;index:idx_attempt_quiz_student;uniqueIndex:idx_one_open_attempt,where:submitted = false"`
	StudentID uint `json:"student_id" gorm:"not null;index:idx_attempt_quiz_student;uniqueIndex:idx_one_open_attempt,where:submitted = false"`
	SectionID uint `json:"section_id" gorm:"not null;index"`

	StudentName   string     `json:"student_name" gorm:"size:150"`
	AttemptNumber int        `json:"attempt_number" gorm:"not null"`
	StartedAt     time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	Submitted     bool       `json:"submitted" gorm:"not null;default:false"`

	Answers  datatypes.JSON   `json:"answers" gorm:"type:jsonb"`
	Score    float64          `json:"score" gorm:"default:0"`
	MaxScore float64          `json:"max_score" gorm:"default:0"`
	Source   SubmissionSource `json:"source" gorm:"size:20;default:manual"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// Expiry returns the deadline for the attempt under the quiz's time limit,
// or nil when the quiz is untimed.
func (a *QuizAttempt) Expiry(quiz *Quiz) *time.Time {
	if quiz.TimeLimit <= 0 {
		return nil
	}
	t := a.StartedAt.Add(quiz.TimeLimitDuration())
	return &t
}

// Bundle decodes the stored raw answers.
func (a *QuizAttempt) Bundle() (*AnswerBundle, error) {
	var b AnswerBundle
	if len(a.Answers) == 0 {
		return &b, nil
	}
	if err := json.Unmarshal(a.Answers, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SetBundle encodes the raw answers for storage.
func (a *QuizAttempt) SetBundle(b *AnswerBundle) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	a.Answers = raw
	return nil
}
