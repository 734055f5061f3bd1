package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
)

// AnswerHistoryPostgreSQL writes the secondary per-question detail log.
// Deployments without the answer_history table surface the failure to the
// caller, which degrades it to a partial-success flag.
type AnswerHistoryPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerHistoryPostgreSQL(db *gorm.DB) repositories.AnswerHistoryRepository {
	return &AnswerHistoryPostgreSQL{db: db}
}

func (r *AnswerHistoryPostgreSQL) CreateBatch(ctx context.Context, entries []*models.AnswerHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

func (r *AnswerHistoryPostgreSQL) DeleteByAttempt(ctx context.Context, attemptID uint) error {
	return r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Delete(&models.AnswerHistory{}).Error
}
