package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (r *QuestionPostgreSQL) GetByQuizID(ctx context.Context, sourceQuizID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ?", sourceQuizID).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
