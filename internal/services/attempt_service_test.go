package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jcodes2003/quizzersupa-sub000/internal/cache"
	"github.com/jcodes2003/quizzersupa-sub000/internal/events"
	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

// ===== REPOSITORY MOCKS =====

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetBySubjectSection(ctx context.Context, teacherID, subjectID, sectionID uint) ([]*models.Quiz, error) {
	args := m.Called(ctx, teacherID, subjectID, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Quiz), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByQuizID(ctx context.Context, sourceQuizID uint) ([]*models.Question, error) {
	args := m.Called(ctx, sourceQuizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetOpenAttempt(ctx context.Context, quizID, studentID uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, quizID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CountSubmitted(ctx context.Context, quizID, studentID uint) (int, error) {
	args := m.Called(ctx, quizID, studentID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) MarkSubmitted(ctx context.Context, attempt *models.QuizAttempt, submittedAt time.Time) (bool, error) {
	args := m.Called(ctx, attempt, submittedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) UpdateScores(ctx context.Context, attemptID uint, score, maxScore float64) error {
	args := m.Called(ctx, attemptID, score, maxScore)
	return args.Error(0)
}

func (m *MockAttemptRepository) ListSubmitted(ctx context.Context, quizIDs []uint, sectionID uint) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, quizIDs, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuizAttempt), args.Error(1)
}

type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) Apply(ctx context.Context, summary *models.ScoreSummary, bestOnly bool) (bool, error) {
	args := m.Called(ctx, summary, bestOnly)
	return args.Bool(0), args.Error(1)
}

func (m *MockSummaryRepository) Replace(ctx context.Context, summary *models.ScoreSummary) (bool, error) {
	args := m.Called(ctx, summary)
	return args.Bool(0), args.Error(1)
}

func (m *MockSummaryRepository) GetByKey(ctx context.Context, quizID, studentID uint, slot int) (*models.ScoreSummary, error) {
	args := m.Called(ctx, quizID, studentID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScoreSummary), args.Error(1)
}

func (m *MockSummaryRepository) ListByQuizIDs(ctx context.Context, quizIDs []uint) ([]*models.ScoreSummary, error) {
	args := m.Called(ctx, quizIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScoreSummary), args.Error(1)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) CreateBatch(ctx context.Context, entries []*models.AnswerHistory) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockHistoryRepository) DeleteByAttempt(ctx context.Context, attemptID uint) error {
	args := m.Called(ctx, attemptID)
	return args.Error(0)
}

// MockRepository aggregates the per-aggregate mocks. WithTx runs the
// function against the same mocks, so tests see transactional calls too.
type MockRepository struct {
	quiz     *MockQuizRepository
	question *MockQuestionRepository
	attempt  *MockAttemptRepository
	summary  *MockSummaryRepository
	history  *MockHistoryRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		quiz:     &MockQuizRepository{},
		question: &MockQuestionRepository{},
		attempt:  &MockAttemptRepository{},
		summary:  &MockSummaryRepository{},
		history:  &MockHistoryRepository{},
	}
}

func (m *MockRepository) Quiz() repositories.QuizRepository             { return m.quiz }
func (m *MockRepository) Question() repositories.QuestionRepository     { return m.question }
func (m *MockRepository) Attempt() repositories.AttemptRepository       { return m.attempt }
func (m *MockRepository) Summary() repositories.SummaryRepository       { return m.summary }
func (m *MockRepository) History() repositories.AnswerHistoryRepository { return m.history }

func (m *MockRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

// ===== TEST SCAFFOLDING =====

func newTestAttemptService(repo *MockRepository, publisher *events.MockEventPublisher) AttemptService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	questions := cache.NewQuestionCache(nil, repo.question, logger)
	var pub events.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	return NewAttemptService(repo, questions, pub, logger, utils.NewValidator())
}

func timedQuiz(id uint, minutes int) *models.Quiz {
	return &models.Quiz{
		ID:           id,
		TeacherID:    7,
		SubjectID:    3,
		Title:        "Periodic Table",
		TimeLimit:    minutes,
		MaxAttempts:  3,
		SaveBestOnly: true,
	}
}

func identificationQuestion(id, quizID uint, key string, points float64) *models.Question {
	return &models.Question{
		ID:        id,
		QuizID:    quizID,
		Type:      models.Identification,
		Prompt:    "prompt",
		AnswerKey: key,
		Points:    points,
	}
}

// ===== START =====

func TestAttemptService_Start_NewAttempt(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	service := newTestAttemptService(repo, publisher)

	quiz := timedQuiz(1, 30)
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.attempt.On("GetOpenAttempt", mock.Anything, uint(1), uint(10)).Return(nil, gorm.ErrRecordNotFound)
	repo.attempt.On("CountSubmitted", mock.Anything, uint(1), uint(10)).Return(0, nil)
	repo.attempt.On("Create", mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
		return a.QuizID == 1 && a.StudentID == 10 && a.AttemptNumber == 1 && !a.Submitted
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.QuizAttempt).ID = 42
	}).Return(nil)

	resp, err := service.Start(context.Background(), &StartAttemptRequest{QuizID: 1, SectionID: 5},
		models.StudentIdentity{ID: 10, Name: "Dana Cruz"})

	require.NoError(t, err)
	assert.Equal(t, uint(42), resp.AttemptID)
	assert.Equal(t, 1, resp.AttemptNumber)
	assert.False(t, resp.Resumed)
	require.NotNil(t, resp.ExpiresAt)
	assert.Equal(t, resp.StartedAt.Add(30*time.Minute), *resp.ExpiresAt)
	assert.Len(t, publisher.Events, 1)
	assert.Equal(t, events.EventAttemptStarted, publisher.Events[0].Type)
}

func TestAttemptService_Start_ResumesOpenAttempt(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	quiz := timedQuiz(1, 30)
	open := &models.QuizAttempt{
		ID:            42,
		QuizID:        1,
		StudentID:     10,
		AttemptNumber: 2,
		StartedAt:     time.Now().Add(-5 * time.Minute),
	}
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.attempt.On("GetOpenAttempt", mock.Anything, uint(1), uint(10)).Return(open, nil)

	first, err := service.Start(context.Background(), &StartAttemptRequest{QuizID: 1, SectionID: 5},
		models.StudentIdentity{ID: 10})
	require.NoError(t, err)
	second, err := service.Start(context.Background(), &StartAttemptRequest{QuizID: 1, SectionID: 5},
		models.StudentIdentity{ID: 10})
	require.NoError(t, err)

	assert.True(t, first.Resumed)
	assert.Equal(t, first.AttemptID, second.AttemptID)
	assert.Equal(t, first.AttemptNumber, second.AttemptNumber)
	repo.attempt.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAttemptService_Start_NoAttemptsRemaining(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	quiz := timedQuiz(1, 0)
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.attempt.On("GetOpenAttempt", mock.Anything, uint(1), uint(10)).Return(nil, gorm.ErrRecordNotFound)
	repo.attempt.On("CountSubmitted", mock.Anything, uint(1), uint(10)).Return(3, nil)

	_, err := service.Start(context.Background(), &StartAttemptRequest{QuizID: 1, SectionID: 5},
		models.StudentIdentity{ID: 10})

	assert.ErrorIs(t, err, ErrNoAttemptsRemaining)
}

func TestAttemptService_Start_ConcurrentStartResumesWinner(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	quiz := timedQuiz(1, 0)
	winner := &models.QuizAttempt{
		ID:            99,
		QuizID:        1,
		StudentID:     10,
		AttemptNumber: 1,
		StartedAt:     time.Now(),
	}
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.attempt.On("GetOpenAttempt", mock.Anything, uint(1), uint(10)).Return(nil, gorm.ErrRecordNotFound).Once()
	repo.attempt.On("CountSubmitted", mock.Anything, uint(1), uint(10)).Return(0, nil)
	repo.attempt.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
	repo.attempt.On("GetOpenAttempt", mock.Anything, uint(1), uint(10)).Return(winner, nil)

	resp, err := service.Start(context.Background(), &StartAttemptRequest{QuizID: 1, SectionID: 5},
		models.StudentIdentity{ID: 10})

	require.NoError(t, err)
	assert.True(t, resp.Resumed)
	assert.Equal(t, uint(99), resp.AttemptID)
	assert.Equal(t, 1, resp.AttemptNumber)
}

func TestAttemptService_Start_QuizNotFound(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Start(context.Background(), &StartAttemptRequest{QuizID: 1, SectionID: 5},
		models.StudentIdentity{ID: 10})

	assert.ErrorIs(t, err, ErrQuizNotFound)
}

// ===== SUBMIT =====

func TestAttemptService_Submit_GradesAndStoresSummary(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	service := newTestAttemptService(repo, publisher)

	quiz := timedQuiz(1, 0)
	attempt := &models.QuizAttempt{
		ID:            42,
		QuizID:        1,
		StudentID:     10,
		AttemptNumber: 1,
		StartedAt:     time.Now().Add(-10 * time.Minute),
	}
	questions := []*models.Question{
		identificationQuestion(100, 1, "Mitochondria", 2),
		identificationQuestion(101, 1, "Golgi Apparatus", 2),
	}

	repo.attempt.On("GetByID", mock.Anything, uint(42)).Return(attempt, nil)
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.question.On("GetByQuizID", mock.Anything, uint(1)).Return(questions, nil)
	repo.attempt.On("MarkSubmitted", mock.Anything, attempt, mock.Anything).Return(true, nil)
	repo.summary.On("Apply", mock.Anything, mock.MatchedBy(func(s *models.ScoreSummary) bool {
		return s.QuizID == 1 && s.StudentID == 10 && s.Slot == 0 && s.Score == 2
	}), true).Return(true, nil)
	repo.history.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	repo.summary.On("GetByKey", mock.Anything, uint(1), uint(10), 0).Return(&models.ScoreSummary{
		QuizID: 1, StudentID: 10, Score: 2, MaxScore: 4, AttemptNumber: 1,
	}, nil)

	resp, err := service.Submit(context.Background(), &SubmitAttemptRequest{
		QuizID:    1,
		AttemptID: 42,
		Answers: models.AnswerBundle{
			Identification: []models.RawAnswer{
				{QuestionID: 100, Answer: "mitochondria"},
				{QuestionID: 101, Answer: "ribosome"},
			},
		},
	}, models.StudentIdentity{ID: 10})

	require.NoError(t, err)
	assert.Equal(t, 2.0, resp.Score)
	assert.Equal(t, 4.0, resp.MaxScore)
	assert.True(t, resp.AnswerLogSaved)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 2.0, resp.Summary.Score)
	assert.Len(t, publisher.Events, 1)
	assert.Equal(t, events.EventAttemptSubmitted, publisher.Events[0].Type)
}

func TestAttemptService_Submit_WrongStudentRejected(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	attempt := &models.QuizAttempt{ID: 42, QuizID: 1, StudentID: 11, StartedAt: time.Now()}
	repo.attempt.On("GetByID", mock.Anything, uint(42)).Return(attempt, nil)

	_, err := service.Submit(context.Background(), &SubmitAttemptRequest{QuizID: 1, AttemptID: 42},
		models.StudentIdentity{ID: 10})

	assert.ErrorIs(t, err, ErrInvalidAttempt)
	repo.attempt.AssertNotCalled(t, "MarkSubmitted", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_Submit_WrongQuizRejected(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	attempt := &models.QuizAttempt{ID: 42, QuizID: 2, StudentID: 10, StartedAt: time.Now()}
	repo.attempt.On("GetByID", mock.Anything, uint(42)).Return(attempt, nil)

	_, err := service.Submit(context.Background(), &SubmitAttemptRequest{QuizID: 1, AttemptID: 42},
		models.StudentIdentity{ID: 10})

	assert.ErrorIs(t, err, ErrInvalidAttempt)
}

func TestAttemptService_Submit_AlreadySubmitted(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	attempt := &models.QuizAttempt{ID: 42, QuizID: 1, StudentID: 10, Submitted: true, StartedAt: time.Now()}
	repo.attempt.On("GetByID", mock.Anything, uint(42)).Return(attempt, nil)

	_, err := service.Submit(context.Background(), &SubmitAttemptRequest{QuizID: 1, AttemptID: 42},
		models.StudentIdentity{ID: 10})

	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestAttemptService_Submit_TimeExpired(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	quiz := timedQuiz(1, 30)
	attempt := &models.QuizAttempt{
		ID:        42,
		QuizID:    1,
		StudentID: 10,
		StartedAt: time.Now().Add(-31 * time.Minute),
	}
	repo.attempt.On("GetByID", mock.Anything, uint(42)).Return(attempt, nil)
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)

	_, err := service.Submit(context.Background(), &SubmitAttemptRequest{QuizID: 1, AttemptID: 42},
		models.StudentIdentity{ID: 10})

	assert.ErrorIs(t, err, ErrTimeExpired)
	repo.attempt.AssertNotCalled(t, "MarkSubmitted", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_Submit_LosesRaceToConcurrentSubmit(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	quiz := timedQuiz(1, 0)
	attempt := &models.QuizAttempt{ID: 42, QuizID: 1, StudentID: 10, StartedAt: time.Now()}
	repo.attempt.On("GetByID", mock.Anything, uint(42)).Return(attempt, nil)
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.question.On("GetByQuizID", mock.Anything, uint(1)).Return([]*models.Question{
		identificationQuestion(100, 1, "Osmosis", 1),
	}, nil)
	repo.attempt.On("MarkSubmitted", mock.Anything, attempt, mock.Anything).Return(false, nil)

	_, err := service.Submit(context.Background(), &SubmitAttemptRequest{QuizID: 1, AttemptID: 42},
		models.StudentIdentity{ID: 10})

	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	repo.summary.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_Submit_AnswerLogFailureIsPartialSuccess(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	quiz := timedQuiz(1, 0)
	attempt := &models.QuizAttempt{ID: 42, QuizID: 1, StudentID: 10, AttemptNumber: 1, StartedAt: time.Now()}
	repo.attempt.On("GetByID", mock.Anything, uint(42)).Return(attempt, nil)
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.question.On("GetByQuizID", mock.Anything, uint(1)).Return([]*models.Question{
		identificationQuestion(100, 1, "Osmosis", 1),
	}, nil)
	repo.attempt.On("MarkSubmitted", mock.Anything, attempt, mock.Anything).Return(true, nil)
	repo.summary.On("Apply", mock.Anything, mock.Anything, true).Return(true, nil)
	repo.history.On("CreateBatch", mock.Anything, mock.Anything).Return(gorm.ErrInvalidDB)
	repo.summary.On("GetByKey", mock.Anything, uint(1), uint(10), 0).Return(nil, gorm.ErrRecordNotFound)

	resp, err := service.Submit(context.Background(), &SubmitAttemptRequest{
		QuizID:    1,
		AttemptID: 42,
		Answers: models.AnswerBundle{
			Identification: []models.RawAnswer{{QuestionID: 100, Answer: "osmosis"}},
		},
	}, models.StudentIdentity{ID: 10})

	require.NoError(t, err)
	assert.False(t, resp.AnswerLogSaved)
	assert.Equal(t, 1.0, resp.Score)
}

// ===== SOURCE QUIZ RESOLUTION =====

func TestAttemptService_Submit_GradesAgainstSourceQuestions(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	quiz := timedQuiz(5, 0)
	quiz.SourceQuizID = 1
	attempt := &models.QuizAttempt{ID: 42, QuizID: 5, StudentID: 10, AttemptNumber: 1, StartedAt: time.Now()}
	repo.attempt.On("GetByID", mock.Anything, uint(42)).Return(attempt, nil)
	repo.quiz.On("GetByID", mock.Anything, uint(5)).Return(quiz, nil)
	repo.question.On("GetByQuizID", mock.Anything, uint(1)).Return([]*models.Question{
		identificationQuestion(100, 1, "Diffusion", 1),
	}, nil)
	repo.attempt.On("MarkSubmitted", mock.Anything, attempt, mock.Anything).Return(true, nil)
	repo.summary.On("Apply", mock.Anything, mock.Anything, true).Return(true, nil)
	repo.history.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	repo.summary.On("GetByKey", mock.Anything, uint(5), uint(10), 0).Return(nil, gorm.ErrRecordNotFound)

	resp, err := service.Submit(context.Background(), &SubmitAttemptRequest{
		QuizID:    5,
		AttemptID: 42,
		Answers: models.AnswerBundle{
			Identification: []models.RawAnswer{{QuestionID: 100, Answer: "Diffusion"}},
		},
	}, models.StudentIdentity{ID: 10})

	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Score)
	repo.question.AssertCalled(t, "GetByQuizID", mock.Anything, uint(1))
}

// ===== ATTEMPT COUNT =====

func TestAttemptService_AttemptCount(t *testing.T) {
	repo := newMockRepository()
	service := newTestAttemptService(repo, nil)

	quiz := timedQuiz(1, 0)
	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(quiz, nil)
	repo.attempt.On("CountSubmitted", mock.Anything, uint(1), uint(10)).Return(2, nil)

	resp, err := service.AttemptCount(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.AttemptCount)
	assert.Equal(t, 3, resp.MaxAttempts)
	assert.True(t, resp.AllowRetake)
}
