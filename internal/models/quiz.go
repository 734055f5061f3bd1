package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	TeacherID    uint   `json:"teacher_id" gorm:"not null;index"`
	SubjectID    uint   `json:"subject_id" gorm:"not null;index"`
	Title        string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	AccessCode   string `json:"access_code" gorm:"not null;size:20;uniqueIndex"`
	TimeLimit    int    `json:"time_limit" gorm:"default:0"` // minutes, 0 = untimed
	AllowRetake  bool   `json:"allow_retake" gorm:"default:false"`
	MaxAttempts  int    `json:"max_attempts" gorm:"default:1" validate:"min=0,max=10"`
	SaveBestOnly bool   `json:"save_best_only" gorm:"default:true"`

	// A duplicate or assigned quiz shares its source's question set.
	// 0 means the quiz is its own source.
	SourceQuizID uint `json:"source_quiz_id" gorm:"default:0;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Sections []QuizSection `json:"sections" gorm:"foreignKey:QuizID"`
}

// QuizSection links a quiz to a section it has been issued to.
type QuizSection struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	QuizID    uint `json:"quiz_id" gorm:"not null;index:idx_quiz_section,unique"`
	SectionID uint `json:"section_id" gorm:"not null;index:idx_quiz_section,unique"`
}

type Subject struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TeacherID uint   `json:"teacher_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null;size:100"`
}

type Section struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`
}

func (Quiz) TableName() string        { return "quizzes" }
func (QuizSection) TableName() string { return "quiz_sections" }
func (Subject) TableName() string     { return "subjects" }
func (Section) TableName() string     { return "sections" }

// ResolveSourceID returns the quiz id that owns the question set.
func (q *Quiz) ResolveSourceID() uint {
	if q.SourceQuizID != 0 {
		return q.SourceQuizID
	}
	return q.ID
}

// EffectiveMaxAttempts folds the retake policy into a single limit.
func (q *Quiz) EffectiveMaxAttempts() int {
	if q.MaxAttempts > 1 {
		return q.MaxAttempts
	}
	return 1
}

// RetakeAllowed reports whether a student may attempt the quiz more than
// once. MaxAttempts > 1 implies retakes regardless of the boolean flag.
func (q *Quiz) RetakeAllowed() bool {
	return q.AllowRetake || q.MaxAttempts > 1
}

// TimeLimitDuration returns the quiz time limit, or zero when untimed.
func (q *Quiz) TimeLimitDuration() time.Duration {
	return time.Duration(q.TimeLimit) * time.Minute
}
