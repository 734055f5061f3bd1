package grading

import (
	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
)

// EnumerationThreshold is the matched-to-expected ratio at which a
// fixed-points enumeration answer earns full credit.
const EnumerationThreshold = 0.80

// Result is a graded quiz attempt.
type Result struct {
	Score    float64          `json:"score"`
	MaxScore float64          `json:"max_score"`
	Details  []QuestionResult `json:"details"`
}

// QuestionResult is the per-question breakdown backing the answer history.
type QuestionResult struct {
	QuestionID uint    `json:"question_id"`
	Answer     string  `json:"answer"`
	Earned     float64 `json:"earned"`
	Possible   float64 `json:"possible"`
}

// Grade scores a raw answer bundle against a question set. It is pure and
// deterministic: submission-time grading and bulk recheck both call it and
// must never disagree. Questions that cannot be auto-graded (long answers
// without a key) are excluded from the max score entirely.
func Grade(questions []*models.Question, bundle *models.AnswerBundle) Result {
	result := Result{Details: make([]QuestionResult, 0, len(questions))}

	for _, q := range questions {
		if !q.Gradable() {
			continue
		}
		answer, _ := bundle.ForQuestion(q)

		var earned, possible float64
		switch q.EffectiveType() {
		case models.MultipleChoice:
			possible = q.Points
			if MatchChoice(answer, q.AnswerKey) {
				earned = q.Points
			}
		case models.Enumeration:
			earned, possible = gradeEnumeration(q, answer)
		default:
			// identification, and long answers with a teacher key
			possible = q.Points
			if MatchIdentification(answer, q.AnswerKey) {
				earned = q.Points
			}
		}

		result.Score += earned
		result.MaxScore += possible
		result.Details = append(result.Details, QuestionResult{
			QuestionID: q.ID,
			Answer:     answer,
			Earned:     earned,
			Possible:   possible,
		})
	}
	return result
}

func gradeEnumeration(q *models.Question, answer string) (earned, possible float64) {
	keyItems := q.KeyItems()
	expected := len(keyItems)
	if expected == 0 {
		return 0, 0
	}

	matched := MatchEnumeration(SplitItems(answer), keyItems)
	if matched > expected {
		matched = expected
	}

	if q.PerItemScoring() {
		// Per-item mode is keyed on Points == item count; the max is the
		// item count, which is the same number by construction.
		return float64(matched), float64(expected)
	}

	possible = q.Points
	if float64(matched)/float64(expected) >= EnumerationThreshold {
		earned = q.Points
	}
	return earned, possible
}
