package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jcodes2003/quizzersupa-sub000/internal/services"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

type RecheckHandler struct {
	BaseHandler
	recheckService services.RecheckService
	reportService  services.ReportService
	validator      *utils.Validator
}

func NewRecheckHandler(
	recheckService services.RecheckService,
	reportService services.ReportService,
	validator *utils.Validator,
	logger utils.Logger,
) *RecheckHandler {
	return &RecheckHandler{
		BaseHandler:    NewBaseHandler(logger),
		recheckService: recheckService,
		reportService:  reportService,
		validator:      validator,
	}
}

// RecheckSection re-grades every submitted attempt of a section
// @Summary Recheck section
// @Description Replays the scorer over the submitted attempts of the teacher's quizzes in one subject and section, then rewrites the score summaries
// @Tags recheck
// @Accept json
// @Produce json
// @Param request body services.RecheckRequest true "Subject and section"
// @Success 200 {object} services.RecheckResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /recheck [post]
func (h *RecheckHandler) RecheckSection(c *gin.Context) {
	teacherID, ok := h.teacherIdentity(c)
	if !ok {
		return
	}

	var req services.RecheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Rechecking section",
		"teacher_id", teacherID,
		"subject_id", req.SubjectID,
		"section_id", req.SectionID)

	resp, err := h.recheckService.RecheckSection(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SectionReport downloads the section scores as an xlsx workbook
// @Summary Section report
// @Description Exports the current score summaries of the teacher's subject and section as an xlsx file
// @Tags recheck
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param subject_id query uint true "Subject ID"
// @Param section_id query uint true "Section ID"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Router /recheck/report [get]
func (h *RecheckHandler) SectionReport(c *gin.Context) {
	teacherID, ok := h.teacherIdentity(c)
	if !ok {
		return
	}

	subjectID := h.parseQueryUint(c, "subject_id")
	if subjectID == 0 {
		return
	}
	sectionID := h.parseQueryUint(c, "section_id")
	if sectionID == 0 {
		return
	}

	h.LogRequest(c, "Exporting section report",
		"teacher_id", teacherID,
		"subject_id", subjectID,
		"section_id", sectionID)

	data, err := h.reportService.SectionReport(c.Request.Context(), teacherID, subjectID, sectionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("section-%d-scores-%s.xlsx", sectionID, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *RecheckHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: permissionError.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
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
