package service

import (
	"errors"
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

type SavedDealService interface {
	GetSavedDeals(userID uint) ([]model.SavedDeal, error)
	// SaveDeal bookmarks a deal. Saving an already-saved deal is a no-op.
	SaveDeal(userID, dealID uint) (*model.SavedDeal, error)
	// UnsaveDeal removes the bookmark. Removing a missing bookmark succeeds,
	// so unsave is idempotent like save.
	UnsaveDeal(userID, dealID uint) error
}

type savedDealService struct {
	savedRepo repository.SavedDealRepository
	dealRepo  repository.DealRepository
}

func NewSavedDealService(savedRepo repository.SavedDealRepository, dealRepo repository.DealRepository) SavedDealService {
	return &savedDealService{
		savedRepo: savedRepo,
		dealRepo:  dealRepo,
	}
}

func (s *savedDealService) GetSavedDeals(userID uint) ([]model.SavedDeal, error) {
	items, err := s.savedRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch saved deals", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

func (s *savedDealService) SaveDeal(userID, dealID uint) (*model.SavedDeal, error) {
	logger.Info("Saving deal", map[string]interface{}{
		"user_id": userID,
		"deal_id": dealID,
	})

	if _, err := s.dealRepo.FindByID(dealID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}

	// Idempotent create: an existing bookmark is returned as-is.
	existing, err := s.savedRepo.FindByUserAndDeal(userID, dealID)
	if err == nil {
		logger.Debug("Deal already saved", map[string]interface{}{
			"user_id": userID,
			"deal_id": dealID,
		})
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.SavedDeal{
		UserID:  userID,
		DealID:  dealID,
		SavedAt: time.Now(),
	}
	if err := s.savedRepo.Create(item); err != nil {
		return nil, err
	}

	logger.Info("Deal saved", map[string]interface{}{
		"saved_deal_id": item.ID,
	})
	return item, nil
}

func (s *savedDealService) UnsaveDeal(userID, dealID uint) error {
	logger.Info("Unsaving deal", map[string]interface{}{
		"user_id": userID,
		"deal_id": dealID,
	})

	return s.savedRepo.Delete(userID, dealID)
}
