package utils

import (
	"strings"

	apperrors "github.com/jcodes2003/quizzersupa-sub000/internal/errors"
	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
)

// QuestionValidator checks answer-key configuration at ingestion time, so
// the grading engine can trust the question set it is handed.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates one question's grading configuration.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) error {
	var errs apperrors.ValidationErrors

	if strings.TrimSpace(q.Prompt) == "" {
		errs = append(errs, *apperrors.NewValidationError("prompt", "is required", q.Prompt))
	}
	if q.Points <= 0 {
		errs = append(errs, *apperrors.NewValidationError("points", "must be greater than zero", q.Points))
	}

	switch q.Type {
	case models.MultipleChoice:
		// Fewer than two options degrades to identification at grading
		// time, so only the key/option mismatch is a hard error here.
		if len(q.Options) >= 2 && !keyInOptions(q) {
			errs = append(errs, *apperrors.NewValidationError(
				"answer_key", "must be one of the offered options", q.AnswerKey))
		}
	case models.Enumeration:
		if len(q.KeyItems()) == 0 {
			errs = append(errs, *apperrors.NewValidationError(
				"answer_key", "must list at least one expected item", q.AnswerKey))
		}
	case models.Identification, models.LongAnswer:
		// A long answer without a key is legal; it is simply excluded from
		// auto-grading.
	default:
		errs = append(errs, *apperrors.NewValidationError(
			"type", "must be a valid question type", string(q.Type)))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateBatch validates a whole question set.
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	for _, q := range questions {
		if err := v.ValidateQuestion(q); err != nil {
			return err
		}
	}
	return nil
}

func keyInOptions(q *models.Question) bool {
	for _, opt := range q.Options {
		if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(q.AnswerKey)) {
			return true
		}
	}
	return false
}
