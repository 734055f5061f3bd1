package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
)

type repository struct {
	db       *gorm.DB
	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	attempt  repositories.AttemptRepository
	summary  repositories.SummaryRepository
	history  repositories.AnswerHistoryRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		quiz:     NewQuizPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
		summary:  NewSummaryPostgreSQL(db),
		history:  NewAnswerHistoryPostgreSQL(db),
	}
}

func (r *repository) Quiz() repositories.QuizRepository             { return r.quiz }
func (r *repository) Question() repositories.QuestionRepository     { return r.question }
func (r *repository) Attempt() repositories.AttemptRepository       { return r.attempt }
func (r *repository) Summary() repositories.SummaryRepository       { return r.summary }
func (r *repository) History() repositories.AnswerHistoryRepository { return r.history }

func (r *repository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
