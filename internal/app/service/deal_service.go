package service

import (
	"errors"
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrDealNotFound       = errors.New("deal not found")
	ErrDealAccessDenied   = errors.New("deal access denied")
	ErrInvalidPricing     = errors.New("discounted price must be below original price")
	ErrInvalidTimeWindow  = errors.New("end time must be after start time")
	ErrInvalidRedemptions = errors.New("max redemptions must be at least 1")
	ErrInvalidInterval    = errors.New("recurring deals require a valid interval")
)

type DealService interface {
	CreateDeal(userID uint, deal *model.Deal) error
	GetDealByID(id uint) (*model.Deal, error)
	ListLiveDeals() ([]model.Deal, error)
	ListMerchantDeals(merchantID uint) ([]model.Deal, error)
	UpdateDeal(userID uint, deal *model.Deal) error
	DeleteDeal(userID, id uint) error
	// RepostDeal creates a successor deal with a fresh redemption pool over the
	// caller-supplied window. The original row only gets its last_recurred_at
	// stamped; it is never resurrected in place.
	RepostDeal(userID, dealID uint, startTime, endTime time.Time) (*model.Deal, error)
}

type dealService struct {
	dealRepo     repository.DealRepository
	merchantRepo repository.MerchantRepository
	now          func() time.Time
}

func NewDealService(dealRepo repository.DealRepository, merchantRepo repository.MerchantRepository, clock ...func() time.Time) DealService {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	return &dealService{
		dealRepo:     dealRepo,
		merchantRepo: merchantRepo,
		now:          now,
	}
}

func validateDeal(deal *model.Deal) error {
	if deal.DiscountedPrice >= deal.OriginalPrice {
		return ErrInvalidPricing
	}
	if !deal.EndTime.After(deal.StartTime) {
		return ErrInvalidTimeWindow
	}
	if deal.MaxRedemptions < 1 {
		return ErrInvalidRedemptions
	}
	if deal.IsRecurring {
		if _, ok := deal.RecurringInterval.Threshold(); !ok {
			return ErrInvalidInterval
		}
	}
	return nil
}

func (s *dealService) ownedMerchant(userID, merchantID uint) (*model.Merchant, error) {
	merchant, err := s.merchantRepo.FindByID(merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	if merchant.UserID != userID {
		return nil, ErrDealAccessDenied
	}
	return merchant, nil
}

func (s *dealService) CreateDeal(userID uint, deal *model.Deal) error {
	logger.Info("Creating new deal", map[string]interface{}{
		"title":       deal.Title,
		"merchant_id": deal.MerchantID,
		"user_id":     userID,
	})

	if _, err := s.ownedMerchant(userID, deal.MerchantID); err != nil {
		logger.Warn("Deal creation rejected", map[string]interface{}{
			"merchant_id": deal.MerchantID,
			"user_id":     userID,
			"reason":      err.Error(),
		})
		return err
	}

	if err := validateDeal(deal); err != nil {
		logger.Warn("Deal validation failed", map[string]interface{}{
			"title":  deal.Title,
			"reason": err.Error(),
		})
		return err
	}

	deal.DiscountPercentage = deal.ComputeDiscountPercentage()
	deal.CurrentRedemptions = 0
	deal.IsActive = true
	if !deal.IsRecurring {
		deal.RecurringInterval = ""
	}

	if err := s.dealRepo.Create(deal); err != nil {
		logger.Error("Failed to create deal", err, map[string]interface{}{
			"title": deal.Title,
		})
		return err
	}

	logger.Info("Deal created successfully", map[string]interface{}{
		"deal_id": deal.ID,
		"title":   deal.Title,
	})
	return nil
}

func (s *dealService) GetDealByID(id uint) (*model.Deal, error) {
	deal, err := s.dealRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		logger.Error("Failed to fetch deal", err, map[string]interface{}{
			"deal_id": id,
		})
		return nil, err
	}
	return deal, nil
}

func (s *dealService) ListLiveDeals() ([]model.Deal, error) {
	deals, err := s.dealRepo.FindLive(s.now())
	if err != nil {
		logger.Error("Failed to list live deals", err)
		return nil, err
	}
	return deals, nil
}

func (s *dealService) ListMerchantDeals(merchantID uint) ([]model.Deal, error) {
	return s.dealRepo.FindByMerchantID(merchantID)
}

func (s *dealService) UpdateDeal(userID uint, deal *model.Deal) error {
	logger.Info("Updating deal", map[string]interface{}{
		"deal_id": deal.ID,
		"user_id": userID,
	})

	existing, err := s.dealRepo.FindByID(deal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDealNotFound
		}
		return err
	}

	if existing.Merchant.UserID != userID {
		logger.Warn("Deal update forbidden", map[string]interface{}{
			"deal_id": deal.ID,
			"user_id": userID,
		})
		return ErrDealAccessDenied
	}

	// Redemption accounting and recurrence bookkeeping are never edited
	// directly; they move only through claims and reposts.
	deal.MerchantID = existing.MerchantID
	deal.CurrentRedemptions = existing.CurrentRedemptions
	deal.LastRecurredAt = existing.LastRecurredAt
	deal.CreatedAt = existing.CreatedAt

	if err := validateDeal(deal); err != nil {
		return err
	}
	deal.DiscountPercentage = deal.ComputeDiscountPercentage()
	if !deal.IsRecurring {
		deal.RecurringInterval = ""
	}

	if err := s.dealRepo.Update(deal); err != nil {
		logger.Error("Failed to update deal", err, map[string]interface{}{
			"deal_id": deal.ID,
		})
		return err
	}

	logger.Info("Deal updated successfully", map[string]interface{}{
		"deal_id": deal.ID,
	})
	return nil
}

func (s *dealService) DeleteDeal(userID, id uint) error {
	logger.Info("Deleting deal", map[string]interface{}{
		"deal_id": id,
		"user_id": userID,
	})

	existing, err := s.dealRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDealNotFound
		}
		return err
	}

	if existing.Merchant.UserID != userID {
		logger.Warn("Deal delete forbidden", map[string]interface{}{
			"deal_id": id,
			"user_id": userID,
		})
		return ErrDealAccessDenied
	}

	// Claims against the deal are historical records and stay in place.
	if err := s.dealRepo.Delete(id); err != nil {
		logger.Error("Failed to delete deal", err, map[string]interface{}{
			"deal_id": id,
		})
		return err
	}

	logger.Info("Deal deleted successfully", map[string]interface{}{
		"deal_id": id,
	})
	return nil
}

func (s *dealService) RepostDeal(userID, dealID uint, startTime, endTime time.Time) (*model.Deal, error) {
	logger.Info("Reposting deal", map[string]interface{}{
		"deal_id": dealID,
		"user_id": userID,
	})

	original, err := s.dealRepo.FindByID(dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}

	if original.Merchant.UserID != userID {
		logger.Warn("Deal repost forbidden", map[string]interface{}{
			"deal_id": dealID,
			"user_id": userID,
		})
		return nil, ErrDealAccessDenied
	}

	if !endTime.After(startTime) {
		return nil, ErrInvalidTimeWindow
	}

	successor := cloneDealForRepost(original, startTime, endTime)
	if err := s.dealRepo.Create(successor); err != nil {
		logger.Error("Failed to create repost successor", err, map[string]interface{}{
			"deal_id": dealID,
		})
		return nil, err
	}

	if err := s.dealRepo.MarkRecurred(original.ID, s.now()); err != nil {
		// The successor exists; a missed stamp only allows the scheduler to
		// consider the original again sooner.
		logger.Error("Failed to stamp original deal after repost", err, map[string]interface{}{
			"deal_id": original.ID,
		})
	}

	logger.Info("Deal reposted successfully", map[string]interface{}{
		"deal_id":      original.ID,
		"successor_id": successor.ID,
	})
	return successor, nil
}

// cloneDealForRepost copies the merchandising fields of a deal into a fresh
// row with an empty redemption pool.
func cloneDealForRepost(original *model.Deal, startTime, endTime time.Time) *model.Deal {
	return &model.Deal{
		MerchantID:         original.MerchantID,
		Title:              original.Title,
		Description:        original.Description,
		OriginalPrice:      original.OriginalPrice,
		DiscountedPrice:    original.DiscountedPrice,
		DiscountPercentage: original.DiscountPercentage,
		Category:           original.Category,
		StartTime:          startTime,
		EndTime:            endTime,
		MaxRedemptions:     original.MaxRedemptions,
		CurrentRedemptions: 0,
		IsActive:           true,
		IsRecurring:        original.IsRecurring,
		RecurringInterval:  original.RecurringInterval,
	}
}
