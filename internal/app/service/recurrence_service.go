package service

import (
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
)

// repostWindow is the lifetime of every scheduler-created successor deal,
// regardless of the original deal's duration.
const repostWindow = 24 * time.Hour

type RecurrenceService interface {
	// ProcessRecurringDeals reposts every expired recurring deal whose
	// interval has elapsed, returning the number of deals reposted. Per-deal
	// failures are logged and skipped; the sweep never aborts early.
	ProcessRecurringDeals() (int, error)
}

type recurrenceService struct {
	dealRepo repository.DealRepository
	now      func() time.Time
}

func NewRecurrenceService(dealRepo repository.DealRepository, clock ...func() time.Time) RecurrenceService {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	return &recurrenceService{
		dealRepo: dealRepo,
		now:      now,
	}
}

func (s *recurrenceService) ProcessRecurringDeals() (int, error) {
	now := s.now()

	logger.Info("Starting recurring deal sweep", map[string]interface{}{
		"now": now,
	})

	expired, err := s.dealRepo.FindExpired(now)
	if err != nil {
		logger.Error("Failed to fetch expired deals for sweep", err)
		return 0, err
	}

	processed := 0
	for i := range expired {
		deal := &expired[i]

		if !deal.IsRecurring {
			continue
		}

		threshold, ok := deal.RecurringInterval.Threshold()
		if !ok {
			logger.Warn("Skipping recurring deal with invalid interval", map[string]interface{}{
				"deal_id":  deal.ID,
				"interval": deal.RecurringInterval,
			})
			continue
		}

		// lastRecurredAt keeps an already-reposted deal quiet until the next
		// interval boundary, which makes back-to-back sweeps idempotent.
		since := deal.CreatedAt
		if deal.LastRecurredAt != nil {
			since = *deal.LastRecurredAt
		}
		if now.Sub(since) < threshold {
			continue
		}

		successor := cloneDealForRepost(deal, now, now.Add(repostWindow))
		if err := s.dealRepo.Create(successor); err != nil {
			logger.Error("Failed to repost recurring deal, continuing sweep", err, map[string]interface{}{
				"deal_id": deal.ID,
			})
			continue
		}

		if err := s.dealRepo.MarkRecurred(deal.ID, now); err != nil {
			logger.Error("Failed to stamp recurring deal, continuing sweep", err, map[string]interface{}{
				"deal_id": deal.ID,
			})
			continue
		}

		logger.Info("Recurring deal reposted", map[string]interface{}{
			"deal_id":      deal.ID,
			"successor_id": successor.ID,
			"interval":     deal.RecurringInterval,
		})
		processed++
	}

	logger.Info("Recurring deal sweep completed", map[string]interface{}{
		"expired_seen": len(expired),
		"processed":    processed,
	})
	return processed, nil
}
