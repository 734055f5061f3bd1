package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"gorm.io/gorm"

	"github.com/jcodes2003/quizzersupa-sub000/internal/cache"
	"github.com/jcodes2003/quizzersupa-sub000/internal/events"
	"github.com/jcodes2003/quizzersupa-sub000/internal/grading"
	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

type attemptService struct {
	repo      repositories.Repository
	questions *cache.QuestionCache
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewAttemptService(
	repo repositories.Repository,
	questions *cache.QuestionCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		questions: questions,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest, student models.StudentIdentity) (*StartAttemptResponse, error) {
	s.logger.Info("Starting quiz attempt",
		"quiz_id", req.QuizID,
		"student_id", student.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	// Resume an existing open attempt unchanged. An open attempt whose time
	// has run out is auto-submitted first, which also frees the student to
	// start a fresh one if attempts remain.
	open, err := s.repo.Attempt().GetOpenAttempt(ctx, quiz.ID, student.ID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up open attempt: %w", err)
	}
	if open != nil {
		expiry := open.Expiry(quiz)
		if expiry == nil || time.Now().Before(*expiry) {
			s.logger.Info("Resuming open attempt", "attempt_id", open.ID)
			return s.startResponse(quiz, open, true), nil
		}
		if err := s.handleTimeout(ctx, quiz, open); err != nil {
			return nil, err
		}
	}

	submitted, err := s.repo.Attempt().CountSubmitted(ctx, quiz.ID, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if submitted >= quiz.EffectiveMaxAttempts() {
		return nil, ErrNoAttemptsRemaining
	}

	attempt := &models.QuizAttempt{
		QuizID:        quiz.ID,
		StudentID:     student.ID,
		SectionID:     req.SectionID,
		StudentName:   student.Name,
		AttemptNumber: submitted + 1,
		StartedAt:     time.Now(),
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		// A concurrent start won the one-open-attempt index; resume the
		// attempt it created so both callers see the same row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, lookupErr := s.repo.Attempt().GetOpenAttempt(ctx, quiz.ID, student.ID)
			if lookupErr != nil {
				return nil, fmt.Errorf("failed to resume racing attempt: %w", lookupErr)
			}
			s.logger.Info("Resuming attempt created by concurrent start", "attempt_id", winner.ID)
			return s.startResponse(quiz, winner, true), nil
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"student_id", student.ID,
		"attempt_number", attempt.AttemptNumber)

	s.publishAttemptStarted(ctx, quiz, attempt)

	return s.startResponse(quiz, attempt, false), nil
}

func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest, student models.StudentIdentity) (*SubmitAttemptResponse, error) {
	s.logger.Info("Submitting quiz attempt",
		"attempt_id", req.AttemptID,
		"quiz_id", req.QuizID,
		"student_id", student.ID,
		"source", req.Source)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Source == "" {
		req.Source = models.SourceManual
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, req.AttemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	// An attempt id pointing at another student's or quiz's row must never
	// touch that row.
	if attempt.StudentID != student.ID || attempt.QuizID != req.QuizID {
		return nil, ErrInvalidAttempt
	}
	if attempt.Submitted {
		return nil, ErrAlreadySubmitted
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, attempt.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if expiry := attempt.Expiry(quiz); expiry != nil && time.Now().After(*expiry) {
		return nil, ErrTimeExpired
	}

	questions, err := s.questions.GetByQuizID(ctx, quiz.ResolveSourceID())
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	result := grading.Grade(questions, &req.Answers)

	submittedAt := time.Now()
	if err := attempt.SetBundle(&req.Answers); err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	attempt.Score = result.Score
	attempt.MaxScore = result.MaxScore
	attempt.Source = req.Source

	var summary *models.ScoreSummary
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		ok, err := tx.Attempt().MarkSubmitted(ctx, attempt, submittedAt)
		if err != nil {
			return fmt.Errorf("failed to mark attempt submitted: %w", err)
		}
		if !ok {
			return ErrAlreadySubmitted
		}

		summary = buildSummary(quiz, attempt, submittedAt)
		if _, err := tx.Summary().Apply(ctx, summary, quiz.SaveBestOnly); err != nil {
			return fmt.Errorf("failed to apply score summary: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The detailed answer log is secondary: a deployment without the table
	// still gets a graded attempt, the caller just sees the partial flag.
	answerLogSaved := true
	if err := s.writeAnswerHistory(ctx, attempt.ID, result.Details); err != nil {
		answerLogSaved = false
		s.logger.Warn("Answer history write failed",
			"attempt_id", attempt.ID,
			"error", err)
	}

	// In best-only mode the stored row may belong to an earlier, higher
	// scoring attempt; return what the store actually holds.
	slot := models.SummarySlot(quiz.SaveBestOnly, attempt.AttemptNumber)
	if stored, err := s.repo.Summary().GetByKey(ctx, quiz.ID, student.ID, slot); err == nil {
		summary = stored
	}

	s.logger.Info("Quiz attempt submitted",
		"attempt_id", attempt.ID,
		"score", result.Score,
		"max_score", result.MaxScore)

	s.publishAttemptSubmitted(ctx, attempt, submittedAt)

	return &SubmitAttemptResponse{
		Score:          result.Score,
		MaxScore:       result.MaxScore,
		AttemptNumber:  attempt.AttemptNumber,
		Summary:        summary,
		AnswerLogSaved: answerLogSaved,
	}, nil
}

func (s *attemptService) AttemptCount(ctx context.Context, quizID uint, studentID uint) (*AttemptCountResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	count, err := s.repo.Attempt().CountSubmitted(ctx, quizID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	return &AttemptCountResponse{
		AttemptCount: count,
		MaxAttempts:  quiz.EffectiveMaxAttempts(),
		AllowRetake:  quiz.RetakeAllowed(),
	}, nil
}

// ===== HELPERS =====

// handleTimeout submits an expired open attempt with whatever answers it
// holds (none, for attempts that never reached Submit) so it counts against
// the attempt limit.
func (s *attemptService) handleTimeout(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt) error {
	s.logger.Info("Auto-submitting expired attempt", "attempt_id", attempt.ID)

	bundle, err := attempt.Bundle()
	if err != nil {
		bundle = &models.AnswerBundle{}
	}

	questions, err := s.questions.GetByQuizID(ctx, quiz.ResolveSourceID())
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	result := grading.Grade(questions, bundle)

	attempt.Score = result.Score
	attempt.MaxScore = result.MaxScore
	attempt.Source = models.SourceAutoTimeout

	submittedAt := time.Now()
	return s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		ok, err := tx.Attempt().MarkSubmitted(ctx, attempt, submittedAt)
		if err != nil {
			return fmt.Errorf("failed to mark expired attempt submitted: %w", err)
		}
		if !ok {
			// Lost a race against a concurrent submit; nothing left to do.
			return nil
		}
		_, err = tx.Summary().Apply(ctx, buildSummary(quiz, attempt, submittedAt), quiz.SaveBestOnly)
		return err
	})
}

func (s *attemptService) writeAnswerHistory(ctx context.Context, attemptID uint, details []grading.QuestionResult) error {
	entries := make([]*models.AnswerHistory, len(details))
	for i, d := range details {
		entries[i] = &models.AnswerHistory{
			AttemptID:  attemptID,
			QuestionID: d.QuestionID,
			Answer:     d.Answer,
			Earned:     d.Earned,
			Possible:   d.Possible,
		}
	}
	return s.repo.History().CreateBatch(ctx, entries)
}

func (s *attemptService) startResponse(quiz *models.Quiz, attempt *models.QuizAttempt, resumed bool) *StartAttemptResponse {
	return &StartAttemptResponse{
		AttemptID:     attempt.ID,
		AttemptNumber: attempt.AttemptNumber,
		StartedAt:     attempt.StartedAt,
		ExpiresAt:     attempt.Expiry(quiz),
		MaxAttempts:   quiz.EffectiveMaxAttempts(),
		AllowRetake:   quiz.RetakeAllowed(),
		Resumed:       resumed,
	}
}

func buildSummary(quiz *models.Quiz, attempt *models.QuizAttempt, submittedAt time.Time) *models.ScoreSummary {
	return &models.ScoreSummary{
		QuizID:        quiz.ID,
		StudentID:     attempt.StudentID,
		Slot:          models.SummarySlot(quiz.SaveBestOnly, attempt.AttemptNumber),
		StudentName:   attempt.StudentName,
		AttemptNumber: attempt.AttemptNumber,
		Score:         attempt.Score,
		MaxScore:      attempt.MaxScore,
		SubmittedAt:   submittedAt,
	}
}

func (s *attemptService) publishAttemptStarted(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt) {
	if s.publisher == nil {
		return
	}
	event := &events.Event{
		ID:        watermill.NewUUID(),
		Type:      events.EventAttemptStarted,
		Timestamp: time.Now(),
		Source:    "grading-service",
		Version:   "1.0",
		Data: events.AttemptStartedEvent{
			AttemptID:     attempt.ID,
			QuizID:        quiz.ID,
			StudentID:     attempt.StudentID,
			AttemptNumber: attempt.AttemptNumber,
			StartedAt:     attempt.StartedAt,
			ExpiresAt:     attempt.Expiry(quiz),
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt started event", "attempt_id", attempt.ID, "error", err)
	}
}

func (s *attemptService) publishAttemptSubmitted(ctx context.Context, attempt *models.QuizAttempt, submittedAt time.Time) {
	if s.publisher == nil {
		return
	}
	event := &events.Event{
		ID:        watermill.NewUUID(),
		Type:      events.EventAttemptSubmitted,
		Timestamp: time.Now(),
		Source:    "grading-service",
		Version:   "1.0",
		Data: events.AttemptSubmittedEvent{
			AttemptID:     attempt.ID,
			QuizID:        attempt.QuizID,
			StudentID:     attempt.StudentID,
			AttemptNumber: attempt.AttemptNumber,
			Score:         attempt.Score,
			MaxScore:      attempt.MaxScore,
			Source:        string(attempt.Source),
			SubmittedAt:   submittedAt,
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt submitted event", "attempt_id", attempt.ID, "error", err)
	}
}
