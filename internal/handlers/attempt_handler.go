package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcodes2003/quizzersupa-sub000/internal/services"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	validator      *utils.Validator
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	validator *utils.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		validator:      validator,
	}
}

// StartAttempt opens a fresh attempt or resumes the student's open one
// @Summary Start attempt
// @Description Starts a quiz attempt for the authenticated student, resuming an unexpired open attempt if one exists
// @Tags attempts
// @Accept json
// @Produce json
// @Param request body services.StartAttemptRequest true "Quiz and section"
// @Success 200 {object} services.StartAttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	student, ok := h.studentIdentity(c)
	if !ok {
		return
	}

	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting attempt", "quiz_id", req.QuizID, "student_id", student.ID)

	resp, err := h.attemptService.Start(c.Request.Context(), &req, student)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitAttempt grades and closes an open attempt
// @Summary Submit attempt
// @Description Grades the submitted answers, closes the attempt and updates the score summary
// @Tags attempts
// @Accept json
// @Produce json
// @Param request body services.SubmitAttemptRequest true "Attempt and answers"
// @Success 200 {object} services.SubmitAttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /attempts/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	student, ok := h.studentIdentity(c)
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting attempt",
		"quiz_id", req.QuizID,
		"attempt_id", req.AttemptID,
		"student_id", student.ID)

	resp, err := h.attemptService.Submit(c.Request.Context(), &req, student)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AttemptCount reports how many submitted attempts the student has used
// @Summary Attempt count
// @Description Returns the student's submitted attempt count and the quiz retake policy
// @Tags attempts
// @Produce json
// @Param quiz_id query uint true "Quiz ID"
// @Success 200 {object} services.AttemptCountResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/count [get]
func (h *AttemptHandler) AttemptCount(c *gin.Context) {
	student, ok := h.studentIdentity(c)
	if !ok {
		return
	}

	quizID := h.parseQueryUint(c, "quiz_id")
	if quizID == 0 {
		return
	}

	resp, err := h.attemptService.AttemptCount(c.Request.Context(), quizID, student.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AttemptHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Quiz not found",
		})
	case errors.Is(err, services.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Attempt not found",
		})
	case errors.Is(err, services.ErrInvalidAttempt):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Attempt does not belong to this student and quiz",
		})
	case errors.Is(err, services.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Attempt already submitted",
		})
	case errors.Is(err, services.ErrNoAttemptsRemaining):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "No attempts remaining",
		})
	case errors.Is(err, services.ErrTimeExpired):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Attempt time has expired",
		})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Score store unavailable",
		})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
