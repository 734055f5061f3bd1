package events

import (
	"time"
)

// EventType identifies the grading events published for downstream
// notification consumers.
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventSectionRechecked EventType = "section.rechecked"
)

// Event is the envelope every published event shares.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AttemptStartedEvent struct {
	AttemptID     uint       `json:"attempt_id"`
	QuizID        uint       `json:"quiz_id"`
	StudentID     uint       `json:"student_id"`
	AttemptNumber int        `json:"attempt_number"`
	StartedAt     time.Time  `json:"started_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type AttemptSubmittedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	QuizID        uint      `json:"quiz_id"`
	StudentID     uint      `json:"student_id"`
	AttemptNumber int       `json:"attempt_number"`
	Score         float64   `json:"score"`
	MaxScore      float64   `json:"max_score"`
	Source        string    `json:"source"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type SectionRecheckedEvent struct {
	TeacherID           uint      `json:"teacher_id"`
	SubjectID           uint      `json:"subject_id"`
	SectionID           uint      `json:"section_id"`
	TotalAttempts       int       `json:"total_attempts"`
	UpdatedLogCount     int       `json:"updated_log_count"`
	UpdatedSummaryCount int       `json:"updated_summary_count"`
	CompletedAt         time.Time `json:"completed_at"`
}
