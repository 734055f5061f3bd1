package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
)

type SummaryPostgreSQL struct {
	db *gorm.DB
}

func NewSummaryPostgreSQL(db *gorm.DB) repositories.SummaryRepository {
	return &SummaryPostgreSQL{db: db}
}

var summaryConflictColumns = []clause.Column{
	{Name: "quiz_id"}, {Name: "student_id"}, {Name: "slot"},
}

var summaryUpdateColumns = []string{
	"student_name", "attempt_number", "score", "max_score", "submitted_at", "updated_at",
}

// Apply is the live-submission upsert. The slot column carries the policy:
// slot 0 (best-only) means the ON CONFLICT update only fires when the new
// score is strictly greater; per-attempt slots always take the write. Two
// racing first submissions collapse into one row either way.
func (r *SummaryPostgreSQL) Apply(ctx context.Context, summary *models.ScoreSummary, bestOnly bool) (bool, error) {
	onConflict := clause.OnConflict{
		Columns:   summaryConflictColumns,
		DoUpdates: clause.AssignmentColumns(summaryUpdateColumns),
	}
	if bestOnly {
		onConflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "excluded.score > score_summaries.score"},
		}}
	}

	res := r.db.WithContext(ctx).Clauses(onConflict).Create(summary)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Replace is the recheck upsert: it overwrites the row wholesale, but only
// touches storage when something actually differs, so a convergent recheck
// reports zero summary deltas.
func (r *SummaryPostgreSQL) Replace(ctx context.Context, summary *models.ScoreSummary) (bool, error) {
	onConflict := clause.OnConflict{
		Columns:   summaryConflictColumns,
		DoUpdates: clause.AssignmentColumns(summaryUpdateColumns),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "score_summaries.score IS DISTINCT FROM excluded.score" +
				" OR score_summaries.max_score IS DISTINCT FROM excluded.max_score" +
				" OR score_summaries.attempt_number IS DISTINCT FROM excluded.attempt_number"},
		}},
	}

	res := r.db.WithContext(ctx).Clauses(onConflict).Create(summary)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SummaryPostgreSQL) GetByKey(ctx context.Context, quizID, studentID uint, slot int) (*models.ScoreSummary, error) {
	var summary models.ScoreSummary
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ? AND slot = ?", quizID, studentID, slot).
		First(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *SummaryPostgreSQL) ListByQuizIDs(ctx context.Context, quizIDs []uint) ([]*models.ScoreSummary, error) {
	if len(quizIDs) == 0 {
		return nil, nil
	}
	var summaries []*models.ScoreSummary
	if err := r.db.WithContext(ctx).
		Where("quiz_id IN ?", quizIDs).
		Order("quiz_id ASC, student_id ASC, slot ASC").
		Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}
