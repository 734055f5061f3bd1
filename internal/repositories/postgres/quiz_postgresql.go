package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (r *QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Preload("Sections").
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizPostgreSQL) GetBySubjectSection(ctx context.Context, teacherID, subjectID, sectionID uint) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	if err := r.db.WithContext(ctx).
		Joins("JOIN quiz_sections ON quiz_sections.quiz_id = quizzes.id").
		Where("quizzes.teacher_id = ? AND quizzes.subject_id = ? AND quiz_sections.section_id = ?",
			teacherID, subjectID, sectionID).
		Preload("Sections").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}
