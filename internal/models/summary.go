package models

import "time"

// ScoreSummary is the denormalized per-student score record. Under the
// best-only policy there is one row per (student, quiz) holding the best
// attempt; otherwise one row per (student, quiz, attempt number).
//
// Slot is the upsert key that makes both policies share one unique index:
// 0 in best-only mode (one row per student), the attempt number otherwise.
// AttemptNumber always records the attempt the stored score came from.
type ScoreSummary struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	QuizID        uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_summary_slot"`
	StudentID     uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_summary_slot"`
	Slot          int       `json:"-" gorm:"not null;default:0;uniqueIndex:idx_summary_slot"`
	StudentName   string    `json:"student_name" gorm:"size:150"`
	AttemptNumber int       `json:"attempt_number" gorm:"not null;default:1"`
	Score         float64   `json:"score" gorm:"not null"`
	MaxScore      float64   `json:"max_score" gorm:"not null"`
	SubmittedAt   time.Time `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ScoreSummary) TableName() string {
	return "score_summaries"
}

// SummarySlot returns the upsert slot for an attempt under a policy.
func SummarySlot(saveBestOnly bool, attemptNumber int) int {
	if saveBestOnly {
		return 0
	}
	return attemptNumber
}

// AnswerHistory is the secondary, per-question detail log. Writes to it may
// fail independently of the primary scoring path; callers surface that as a
// partial-success flag instead of failing the submission.
type AnswerHistory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AttemptID  uint      `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint      `json:"question_id" gorm:"not null"`
	Answer     string    `json:"answer" gorm:"type:text"`
	Earned     float64   `json:"earned"`
	Possible   float64   `json:"possible"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AnswerHistory) TableName() string {
	return "answer_history"
}
