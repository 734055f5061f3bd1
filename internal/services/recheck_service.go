package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/jcodes2003/quizzersupa-sub000/internal/cache"
	"github.com/jcodes2003/quizzersupa-sub000/internal/events"
	"github.com/jcodes2003/quizzersupa-sub000/internal/grading"
	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

type recheckService struct {
	repo      repositories.Repository
	questions *cache.QuestionCache
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewRecheckService(
	repo repositories.Repository,
	questions *cache.QuestionCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) RecheckService {
	return &recheckService{
		repo:      repo,
		questions: questions,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// RecheckSection replays the scorer over every submitted attempt of the
// teacher's quizzes in one (subject, section) pair, then rewrites the
// denormalized summaries. Running it twice without answer-key changes
// reports zero deltas on the second run.
func (s *recheckService) RecheckSection(ctx context.Context, teacherID uint, req *RecheckRequest) (*RecheckResponse, error) {
	s.logger.Info("Rechecking section",
		"teacher_id", teacherID,
		"subject_id", req.SubjectID,
		"section_id", req.SectionID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quizzes, err := s.repo.Quiz().GetBySubjectSection(ctx, teacherID, req.SubjectID, req.SectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		return &RecheckResponse{}, nil
	}

	quizByID := make(map[uint]*models.Quiz, len(quizzes))
	quizIDs := make([]uint, 0, len(quizzes))
	for _, quiz := range quizzes {
		quizByID[quiz.ID] = quiz
		quizIDs = append(quizIDs, quiz.ID)
	}

	// One question-set load per distinct source quiz id, never per attempt.
	questionsBySource, err := s.loadQuestionSets(ctx, quizzes)
	if err != nil {
		return nil, err
	}

	attempts, err := s.repo.Attempt().ListSubmitted(ctx, quizIDs, req.SectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt log: %w", err)
	}

	resp := &RecheckResponse{}
	rechecked := make([]*models.QuizAttempt, 0, len(attempts))

	for _, attempt := range attempts {
		quiz := quizByID[attempt.QuizID]
		questions := questionsBySource[quiz.ResolveSourceID()]

		// A source whose question bank is currently empty is left alone so
		// a temporarily emptied quiz does not wipe historical scores.
		if !anyGradable(questions) {
			resp.SkippedAttempts++
			continue
		}

		bundle, err := attempt.Bundle()
		if err != nil {
			s.logger.Warn("Skipping attempt with malformed stored answers",
				"attempt_id", attempt.ID,
				"error", err)
			resp.SkippedAttempts++
			continue
		}

		result := grading.Grade(questions, bundle)
		resp.TotalAttempts++

		if result.Score != attempt.Score || result.MaxScore != attempt.MaxScore {
			if err := s.repo.Attempt().UpdateScores(ctx, attempt.ID, result.Score, result.MaxScore); err != nil {
				return nil, fmt.Errorf("failed to update attempt %d: %w", attempt.ID, err)
			}
			attempt.Score = result.Score
			attempt.MaxScore = result.MaxScore
			resp.UpdatedLogCount++
		}
		rechecked = append(rechecked, attempt)
	}

	updatedSummaries, err := s.rebuildSummaries(ctx, quizByID, rechecked)
	if err != nil {
		return nil, err
	}
	resp.UpdatedSummaryCount = updatedSummaries

	s.logger.Info("Section recheck complete",
		"total_attempts", resp.TotalAttempts,
		"updated_log", resp.UpdatedLogCount,
		"updated_summaries", resp.UpdatedSummaryCount,
		"skipped", resp.SkippedAttempts)

	s.publishSectionRechecked(ctx, teacherID, req, resp)

	return resp, nil
}

func (s *recheckService) loadQuestionSets(ctx context.Context, quizzes []*models.Quiz) (map[uint][]*models.Question, error) {
	sets := make(map[uint][]*models.Question)
	for _, quiz := range quizzes {
		sourceID := quiz.ResolveSourceID()
		if _, ok := sets[sourceID]; ok {
			continue
		}
		// Answer keys are edited outside this service, so the cached set may
		// still hold the pre-edit key. Drop it and read the current one.
		s.questions.Invalidate(ctx, sourceID)
		questions, err := s.questions.GetByQuizID(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions for quiz %d: %w", sourceID, err)
		}
		sets[sourceID] = questions
	}
	return sets, nil
}

// rebuildSummaries re-derives the summary rows from the rechecked log
// entries. Best-only keeps the highest score per (student, quiz), ties
// broken by the latest submission; all-attempts rewrites one row per
// attempt. The same compare-and-set upsert discipline as live submissions
// applies, so a recheck racing a live submission cannot split rows.
func (s *recheckService) rebuildSummaries(ctx context.Context, quizByID map[uint]*models.Quiz, attempts []*models.QuizAttempt) (int, error) {
	type key struct {
		quizID    uint
		studentID uint
		slot      int
	}
	desired := make(map[key]*models.ScoreSummary)

	for _, attempt := range attempts {
		quiz := quizByID[attempt.QuizID]
		submittedAt := attempt.StartedAt
		if attempt.SubmittedAt != nil {
			submittedAt = *attempt.SubmittedAt
		}
		candidate := buildSummary(quiz, attempt, submittedAt)
		k := key{quizID: quiz.ID, studentID: attempt.StudentID, slot: candidate.Slot}

		current, ok := desired[k]
		if !ok || betterSummary(candidate, current) {
			desired[k] = candidate
		}
	}

	updated := 0
	for _, summary := range desired {
		changed, err := s.repo.Summary().Replace(ctx, summary)
		if err != nil {
			return updated, fmt.Errorf("failed to rewrite summary for quiz %d student %d: %w",
				summary.QuizID, summary.StudentID, err)
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

// betterSummary decides which attempt a best-only slot should keep.
func betterSummary(candidate, current *models.ScoreSummary) bool {
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return candidate.SubmittedAt.After(current.SubmittedAt)
}

func anyGradable(questions []*models.Question) bool {
	for _, q := range questions {
		if q.Gradable() {
			return true
		}
	}
	return false
}

func (s *recheckService) publishSectionRechecked(ctx context.Context, teacherID uint, req *RecheckRequest, resp *RecheckResponse) {
	if s.publisher == nil {
		return
	}
	event := &events.Event{
		ID:        watermill.NewUUID(),
		Type:      events.EventSectionRechecked,
		Timestamp: time.Now(),
		Source:    "grading-service",
		Version:   "1.0",
		Data: events.SectionRecheckedEvent{
			TeacherID:           teacherID,
			SubjectID:           req.SubjectID,
			SectionID:           req.SectionID,
			TotalAttempts:       resp.TotalAttempts,
			UpdatedLogCount:     resp.UpdatedLogCount,
			UpdatedSummaryCount: resp.UpdatedSummaryCount,
			CompletedAt:         time.Now(),
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish section rechecked event", "error", err)
	}
}
