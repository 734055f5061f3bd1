package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
)

// Repository aggregates the per-aggregate repositories. WithTx runs the
// given function with a Repository bound to one database transaction.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Summary() SummaryRepository
	History() AnswerHistoryRepository

	WithTx(ctx context.Context, fn func(Repository) error) error
}

type QuizRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)

	// GetBySubjectSection returns the teacher's quizzes issued to the given
	// (subject, section) pair.
	GetBySubjectSection(ctx context.Context, teacherID, subjectID, sectionID uint) ([]*models.Quiz, error)
}

type QuestionRepository interface {
	// GetByQuizID loads the question set of a source quiz in stable order.
	GetByQuizID(ctx context.Context, sourceQuizID uint) ([]*models.Question, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)

	// GetOpenAttempt returns the single open attempt for (student, quiz),
	// or a not-found error.
	GetOpenAttempt(ctx context.Context, quizID, studentID uint) (*models.QuizAttempt, error)

	// CountSubmitted counts a student's submitted attempts for a quiz.
	CountSubmitted(ctx context.Context, quizID, studentID uint) (int, error)

	// MarkSubmitted performs the single atomic Open -> Submitted transition.
	// It returns false when the attempt was already submitted.
	MarkSubmitted(ctx context.Context, attempt *models.QuizAttempt, submittedAt time.Time) (bool, error)

	// UpdateScores rewrites only the score fields of a submitted attempt.
	// Reserved for the recheck path.
	UpdateScores(ctx context.Context, attemptID uint, score, maxScore float64) error

	// ListSubmitted returns every submitted attempt for the given quiz ids,
	// restricted to one section.
	ListSubmitted(ctx context.Context, quizIDs []uint, sectionID uint) ([]*models.QuizAttempt, error)
}

type SummaryRepository interface {
	// Apply upserts a summary row under the live-submission policy:
	// best-only updates only on a strictly greater score (a tie keeps the
	// stored row), all-attempts writes one row per attempt. Returns whether
	// a row was inserted or updated.
	Apply(ctx context.Context, summary *models.ScoreSummary, bestOnly bool) (bool, error)

	// Replace overwrites a summary row regardless of which score is higher;
	// the recheck path uses it to rewrite summaries wholesale. Returns
	// whether the stored row actually changed.
	Replace(ctx context.Context, summary *models.ScoreSummary) (bool, error)

	GetByKey(ctx context.Context, quizID, studentID uint, slot int) (*models.ScoreSummary, error)
	ListByQuizIDs(ctx context.Context, quizIDs []uint) ([]*models.ScoreSummary, error)
}

type AnswerHistoryRepository interface {
	CreateBatch(ctx context.Context, entries []*models.AnswerHistory) error
	DeleteByAttempt(ctx context.Context, attemptID uint) error
}

// IsNotFoundError reports whether err is the store's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
