package scheduler

import (
	"github.com/nearbuy/nearbuy-backend/internal/app/service"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// RecurrenceScheduler drives the periodic repost sweep for recurring deals.
type RecurrenceScheduler struct {
	cron              *cron.Cron
	recurrenceService service.RecurrenceService
	spec              string
}

// NewRecurrenceScheduler builds the scheduler. spec is a standard cron
// expression; the default configuration runs at the top of every hour.
func NewRecurrenceScheduler(recurrenceService service.RecurrenceService, spec string) *RecurrenceScheduler {
	return &RecurrenceScheduler{
		cron:              cron.New(),
		recurrenceService: recurrenceService,
		spec:              spec,
	}
}

func (s *RecurrenceScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled recurring deal sweep", nil)

		processed, err := s.recurrenceService.ProcessRecurringDeals()
		if err != nil {
			logger.Error("Recurring deal sweep failed from scheduler", err)
			return
		}

		logger.Info("Scheduled recurring deal sweep finished", map[string]interface{}{
			"processed": processed,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for recurring deal sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Recurrence scheduler started successfully", map[string]interface{}{
		"spec": s.spec,
	})

	return nil
}

func (s *RecurrenceScheduler) Stop() {
	logger.Info("Stopping recurrence scheduler...", nil)
	s.cron.Stop()
	logger.Info("Recurrence scheduler stopped", nil)
}
