package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jcodes2003/quizzersupa-sub000/internal/services"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

type HandlerManager struct {
	attemptHandler *AttemptHandler
	recheckHandler *RecheckHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler: NewAttemptHandler(serviceManager.Attempt(), validator, logger),
		recheckHandler: NewRecheckHandler(serviceManager.Recheck(), serviceManager.Report(), validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Attempt lifecycle routes (student facing)
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.POST("/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/count", hm.attemptHandler.AttemptCount)
		}

		// Reconciliation routes (teacher facing)
		recheck := v1.Group("/recheck")
		{
			recheck.POST("", hm.recheckHandler.RecheckSection)
			recheck.GET("/report", hm.recheckHandler.SectionReport)
		}
	}
}
