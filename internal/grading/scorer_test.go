package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
)

func question(id uint, qt models.QuestionType, key string, points float64, options ...string) *models.Question {
	return &models.Question{ID: id, QuizID: 1, Type: qt, Prompt: "q", AnswerKey: key, Points: points, Options: options}
}

func TestGrade_MultipleChoice(t *testing.T) {
	questions := []*models.Question{
		question(1, models.MultipleChoice, "Mars", 2, "Mars", "Venus"),
		question(2, models.MultipleChoice, "Venus", 2, "Mars", "Venus"),
	}
	bundle := &models.AnswerBundle{
		MultipleChoice: []models.RawAnswer{
			{QuestionID: 1, Answer: "mars"},
			{QuestionID: 2, Answer: "Mars"},
		},
	}

	result := Grade(questions, bundle)
	assert.Equal(t, 2.0, result.Score)
	assert.Equal(t, 4.0, result.MaxScore)
}

func TestGrade_ChoiceWithOneOptionDegradesToIdentification(t *testing.T) {
	q := question(1, models.MultipleChoice, "gravity", 1, "gravity")

	// The answer arrives in the identification bucket because the question's
	// effective type routes it there.
	bundle := &models.AnswerBundle{
		Identification: []models.RawAnswer{{QuestionID: 1, Answer: "gravities"}},
	}

	result := Grade([]*models.Question{q}, bundle)
	assert.Equal(t, 1.0, result.Score)
}

func TestGrade_EnumerationFixedThreshold(t *testing.T) {
	// 3 of 4 matched (0.75) earns nothing; 4 of 5 (0.80) earns everything.
	fourItems := question(1, models.Enumeration, "a1\nb2\nc3\nd4", 10)
	fiveItems := question(2, models.Enumeration, "a1\nb2\nc3\nd4\ne5", 10)

	bundle := &models.AnswerBundle{Enumeration: []models.RawAnswer{
		{QuestionID: 1, Answer: "a1, b2, c3"},
		{QuestionID: 2, Answer: "a1, b2, c3, d4"},
	}}

	result := Grade([]*models.Question{fourItems, fiveItems}, bundle)
	assert.Equal(t, 10.0, result.Score)
	assert.Equal(t, 20.0, result.MaxScore)
}

func TestGrade_EnumerationPerItemMode(t *testing.T) {
	// Points == item count flips the question into per-item credit.
	q := question(1, models.Enumeration, "mercury\nvenus\nearth\nmars", 4)

	bundle := &models.AnswerBundle{Enumeration: []models.RawAnswer{
		{QuestionID: 1, Answer: "venus, mercury"},
	}}

	result := Grade([]*models.Question{q}, bundle)
	assert.Equal(t, 2.0, result.Score)
	assert.Equal(t, 4.0, result.MaxScore)
}

func TestGrade_PerItemModeFlipsWhenKeyEdited(t *testing.T) {
	// Removing a key item breaks the Points == item-count equality, which
	// silently reverts the question to all-or-nothing scoring. Preserved
	// behavior; callers editing keys need to know about it.
	q := question(1, models.Enumeration, "mercury\nvenus\nearth\nmars", 4)
	bundle := &models.AnswerBundle{Enumeration: []models.RawAnswer{
		{QuestionID: 1, Answer: "venus, mercury"},
	}}
	assert.Equal(t, 2.0, Grade([]*models.Question{q}, bundle).Score)

	q.AnswerKey = "mercury\nvenus\nearth"
	result := Grade([]*models.Question{q}, bundle)
	assert.Equal(t, 0.0, result.Score) // 2/3 < 0.80, fixed mode
	assert.Equal(t, 4.0, result.MaxScore)
}

func TestGrade_PerItemCapsAtExpectedCount(t *testing.T) {
	q := question(1, models.Enumeration, "cat\ndog", 2)
	bundle := &models.AnswerBundle{Enumeration: []models.RawAnswer{
		{QuestionID: 1, Answer: "cat, dog, cat, dog"},
	}}

	result := Grade([]*models.Question{q}, bundle)
	assert.Equal(t, 2.0, result.Score)
}

func TestGrade_LongAnswerRouting(t *testing.T) {
	keyless := question(1, models.LongAnswer, "", 5)
	keyed := question(2, models.LongAnswer, "supply and demand", 5)

	bundle := &models.AnswerBundle{Identification: []models.RawAnswer{
		{QuestionID: 1, Answer: "anything at all"},
		{QuestionID: 2, Answer: "Supply and Demand"},
	}}

	result := Grade([]*models.Question{keyless, keyed}, bundle)
	// The keyless long answer is excluded from the max score entirely.
	assert.Equal(t, 5.0, result.MaxScore)
	assert.Equal(t, 5.0, result.Score)
	assert.Len(t, result.Details, 1)
}

func TestGrade_UnansweredQuestionsEarnNothing(t *testing.T) {
	questions := []*models.Question{
		question(1, models.Identification, "osmosis", 1),
		question(2, models.Identification, "diffusion", 1),
	}
	bundle := &models.AnswerBundle{Identification: []models.RawAnswer{
		{QuestionID: 1, Answer: "osmosis"},
	}}

	result := Grade(questions, bundle)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, 2.0, result.MaxScore)
}

func TestGrade_Deterministic(t *testing.T) {
	questions := []*models.Question{
		question(1, models.MultipleChoice, "Mars", 2, "Mars", "Venus"),
		question(2, models.Enumeration, "cat\ndog\nbird", 3),
		question(3, models.Identification, "isaac newton", 1),
	}
	bundle := &models.AnswerBundle{
		MultipleChoice: []models.RawAnswer{{QuestionID: 1, Answer: "Mars"}},
		Enumeration:    []models.RawAnswer{{QuestionID: 2, Answer: "dog, bird"}},
		Identification: []models.RawAnswer{{QuestionID: 3, Answer: "Isaac Newton"}},
	}

	first := Grade(questions, bundle)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Grade(questions, bundle))
	}
}
