package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

const questionSetTTL = 5 * time.Minute

// QuestionCache caches source-quiz question sets in front of the question
// repository. A cache failure only costs a database round trip, so errors
// from the cache itself are logged and swallowed.
type QuestionCache struct {
	cache     CacheService
	repo      repositories.QuestionRepository
	logger    *slog.Logger
	validator *utils.QuestionValidator
}

func NewQuestionCache(cache CacheService, repo repositories.QuestionRepository, logger *slog.Logger) *QuestionCache {
	return &QuestionCache{
		cache:     cache,
		repo:      repo,
		logger:    logger,
		validator: utils.NewQuestionValidator(),
	}
}

func questionSetKey(sourceQuizID uint) string {
	return fmt.Sprintf("questions:quiz:%d", sourceQuizID)
}

// GetByQuizID returns the question set for a source quiz, from cache when
// possible.
func (c *QuestionCache) GetByQuizID(ctx context.Context, sourceQuizID uint) ([]*models.Question, error) {
	key := questionSetKey(sourceQuizID)

	if c.cache != nil {
		var cached []*models.Question
		err := c.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("question cache read failed", "quiz_id", sourceQuizID, "error", err)
		}
	}

	questions, err := c.repo.GetByQuizID(ctx, sourceQuizID)
	if err != nil {
		return nil, err
	}

	// Misconfigured questions still grade (or get skipped) deterministically;
	// the warning is for the teacher wondering why a question earned nothing.
	for _, q := range questions {
		if err := c.validator.ValidateQuestion(q); err != nil {
			c.logger.Warn("question failed configuration check",
				"quiz_id", sourceQuizID,
				"question_id", q.ID,
				"error", err)
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, questions, questionSetTTL); err != nil {
			c.logger.Warn("question cache write failed", "quiz_id", sourceQuizID, "error", err)
		}
	}
	return questions, nil
}

// Invalidate drops a source quiz's cached question set so the next load
// reads the current answer key.
func (c *QuestionCache) Invalidate(ctx context.Context, sourceQuizID uint) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, questionSetKey(sourceQuizID)); err != nil {
		c.logger.Warn("question cache invalidation failed", "quiz_id", sourceQuizID, "error", err)
	}
}
