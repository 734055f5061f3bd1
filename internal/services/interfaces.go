package services

import (
	"context"
	"time"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
)

// ===== ATTEMPT LIFECYCLE =====

type StartAttemptRequest struct {
	QuizID    uint `json:"quiz_id" validate:"required"`
	SectionID uint `json:"section_id" validate:"required"`
}

type StartAttemptResponse struct {
	AttemptID     uint       `json:"attempt_id"`
	AttemptNumber int        `json:"attempt_number"`
	StartedAt     time.Time  `json:"started_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	MaxAttempts   int        `json:"max_attempts"`
	AllowRetake   bool       `json:"allow_retake"`
	Resumed       bool       `json:"resumed"`
}

type SubmitAttemptRequest struct {
	QuizID    uint                    `json:"quiz_id" validate:"required"`
	AttemptID uint                    `json:"attempt_id" validate:"required"`
	Answers   models.AnswerBundle     `json:"answers"`
	Source    models.SubmissionSource `json:"source" validate:"omitempty,submission_source"`
}

type SubmitAttemptResponse struct {
	Score          float64              `json:"score"`
	MaxScore       float64              `json:"max_score"`
	AttemptNumber  int                  `json:"attempt_number"`
	Summary        *models.ScoreSummary `json:"summary"`
	AnswerLogSaved bool                 `json:"answer_log_saved"`
}

type AttemptCountResponse struct {
	AttemptCount int  `json:"attempt_count"`
	MaxAttempts  int  `json:"max_attempts"`
	AllowRetake  bool `json:"allow_retake"`
}

type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest, student models.StudentIdentity) (*StartAttemptResponse, error)
	Submit(ctx context.Context, req *SubmitAttemptRequest, student models.StudentIdentity) (*SubmitAttemptResponse, error)
	AttemptCount(ctx context.Context, quizID uint, studentID uint) (*AttemptCountResponse, error)
}

// ===== RECONCILIATION =====

type RecheckRequest struct {
	SubjectID uint `json:"subject_id" validate:"required"`
	SectionID uint `json:"section_id" validate:"required"`
}

type RecheckResponse struct {
	TotalAttempts       int `json:"total_attempts"`
	UpdatedLogCount     int `json:"updated_log_count"`
	UpdatedSummaryCount int `json:"updated_summary_count"`
	SkippedAttempts     int `json:"skipped_attempts"`
}

type RecheckService interface {
	RecheckSection(ctx context.Context, teacherID uint, req *RecheckRequest) (*RecheckResponse, error)
}

// ===== REPORTING =====

type ReportService interface {
	// SectionReport renders the current score summaries of the teacher's
	// (subject, section) pair as an xlsx workbook.
	SectionReport(ctx context.Context, teacherID, subjectID, sectionID uint) ([]byte, error)
}

// ===== SERVICE MANAGER =====

// ServiceManager bundles the services the HTTP layer needs.
type ServiceManager interface {
	Attempt() AttemptService
	Recheck() RecheckService
	Report() ReportService
}
