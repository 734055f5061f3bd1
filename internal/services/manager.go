package services

import (
	"log/slog"

	"github.com/jcodes2003/quizzersupa-sub000/internal/cache"
	"github.com/jcodes2003/quizzersupa-sub000/internal/events"
	"github.com/jcodes2003/quizzersupa-sub000/internal/repositories"
	"github.com/jcodes2003/quizzersupa-sub000/internal/utils"
)

type serviceManager struct {
	attempt AttemptService
	recheck RecheckService
	report  ReportService
}

func NewServiceManager(
	repo repositories.Repository,
	questions *cache.QuestionCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ServiceManager {
	return &serviceManager{
		attempt: NewAttemptService(repo, questions, publisher, logger, validator),
		recheck: NewRecheckService(repo, questions, publisher, logger, validator),
		report:  NewReportService(repo, logger),
	}
}

func (m *serviceManager) Attempt() AttemptService { return m.attempt }
func (m *serviceManager) Recheck() RecheckService { return m.recheck }
func (m *serviceManager) Report() ReportService   { return m.report }
