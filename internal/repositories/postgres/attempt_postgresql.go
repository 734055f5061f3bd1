package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (r *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptPostgreSQL) GetOpenAttempt(ctx context.Context, quizID, studentID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ? AND submitted = false", quizID, studentID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptPostgreSQL) CountSubmitted(ctx context.Context, quizID, studentID uint) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ? AND submitted = true", quizID, studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// MarkSubmitted flips Open -> Submitted with a single conditional update.
// The "submitted = false" guard plus the rows-affected check makes a
// double-submit race lose cleanly instead of writing twice.
func (r *AttemptPostgreSQL) MarkSubmitted(ctx context.Context, attempt *models.QuizAttempt, submittedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND submitted = false", attempt.ID).
		Updates(map[string]interface{}{
			"submitted":    true,
			"submitted_at": submittedAt,
			"answers":      attempt.Answers,
			"score":        attempt.Score,
			"max_score":    attempt.MaxScore,
			"source":       attempt.Source,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AttemptPostgreSQL) UpdateScores(ctx context.Context, attemptID uint, score, maxScore float64) error {
	return r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND submitted = true", attemptID).
		Updates(map[string]interface{}{
			"score":     score,
			"max_score": maxScore,
		}).Error
}

func (r *AttemptPostgreSQL) ListSubmitted(ctx context.Context, quizIDs []uint, sectionID uint) ([]*models.QuizAttempt, error) {
	if len(quizIDs) == 0 {
		return nil, nil
	}
	var attempts []*models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("quiz_id IN ? AND section_id = ? AND submitted = true", quizIDs, sectionID).
		Order("id ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
