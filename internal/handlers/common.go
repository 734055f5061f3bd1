package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
		"timestamp", time.Now().Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// ===== IDENTITY EXTRACTION =====

// studentIdentity reads the student identity the gateway injects into
// request headers. Responds 401 and returns false when missing.
func (h *BaseHandler) studentIdentity(c *gin.Context) (models.StudentIdentity, bool) {
	idStr := strings.TrimSpace(c.GetHeader("X-Student-ID"))
	if idStr == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Student not authenticated",
			Details: "missing X-Student-ID header",
		})
		return models.StudentIdentity{}, false
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Student not authenticated",
			Details: "invalid X-Student-ID header",
		})
		return models.StudentIdentity{}, false
	}
	return models.StudentIdentity{
		ID:   uint(id),
		Name: strings.TrimSpace(c.GetHeader("X-Student-Name")),
	}, true
}

// teacherIdentity reads the teacher id header. Responds 401 and returns
// false when missing.
func (h *BaseHandler) teacherIdentity(c *gin.Context) (uint, bool) {
	idStr := strings.TrimSpace(c.GetHeader("X-Teacher-ID"))
	if idStr == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Teacher not authenticated",
			Details: "missing X-Teacher-ID header",
		})
		return 0, false
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Teacher not authenticated",
			Details: "invalid X-Teacher-ID header",
		})
		return 0, false
	}
	return uint(id), true
}

func (h *BaseHandler) parseQueryUint(c *gin.Context, name string) uint {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
			Details: "query parameter is required",
		})
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
			Details: "must be a positive integer",
		})
		return 0
	}
	return uint(value)
}

// ===== HEALTH CHECK =====

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "grading-service",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
