package service

import (
	"errors"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/geo"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMerchantNotFound     = errors.New("merchant not found")
	ErrMerchantAccessDenied = errors.New("merchant access denied")
	ErrInvalidCoordinates   = errors.New("invalid merchant coordinates")
)

type MerchantService interface {
	CreateMerchant(merchant *model.Merchant) error
	GetMerchantByID(id uint) (*model.Merchant, error)
	ListMerchants(activeOnly bool) ([]model.Merchant, error)
	ListUserMerchants(userID uint) ([]model.Merchant, error)
	UpdateMerchant(userID uint, merchant *model.Merchant) error
	// DeactivateMerchant soft-removes a merchant. The row is kept so deals
	// and claims keep valid references.
	DeactivateMerchant(userID, id uint) error
}

type merchantService struct {
	merchantRepo repository.MerchantRepository
}

func NewMerchantService(merchantRepo repository.MerchantRepository) MerchantService {
	return &merchantService{merchantRepo: merchantRepo}
}

func (s *merchantService) CreateMerchant(merchant *model.Merchant) error {
	logger.Info("Creating new merchant", map[string]interface{}{
		"name":    merchant.Name,
		"user_id": merchant.UserID,
	})

	point := geo.Point{Latitude: merchant.Latitude, Longitude: merchant.Longitude}
	if !geo.ValidPoint(point) {
		logger.Warn("Merchant creation rejected: bad coordinates", map[string]interface{}{
			"latitude":  merchant.Latitude,
			"longitude": merchant.Longitude,
		})
		return ErrInvalidCoordinates
	}

	merchant.IsActive = true
	if err := s.merchantRepo.Create(merchant); err != nil {
		logger.Error("Failed to create merchant", err, map[string]interface{}{
			"name": merchant.Name,
		})
		return err
	}

	logger.Info("Merchant created successfully", map[string]interface{}{
		"merchant_id": merchant.ID,
	})
	return nil
}

func (s *merchantService) GetMerchantByID(id uint) (*model.Merchant, error) {
	merchant, err := s.merchantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return merchant, nil
}

func (s *merchantService) ListMerchants(activeOnly bool) ([]model.Merchant, error) {
	return s.merchantRepo.FindAll(activeOnly)
}

func (s *merchantService) ListUserMerchants(userID uint) ([]model.Merchant, error) {
	return s.merchantRepo.FindByUserID(userID)
}

func (s *merchantService) UpdateMerchant(userID uint, merchant *model.Merchant) error {
	existing, err := s.merchantRepo.FindByID(merchant.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMerchantNotFound
		}
		return err
	}

	if existing.UserID != userID {
		logger.Warn("Merchant update forbidden", map[string]interface{}{
			"merchant_id": merchant.ID,
			"user_id":     userID,
		})
		return ErrMerchantAccessDenied
	}

	point := geo.Point{Latitude: merchant.Latitude, Longitude: merchant.Longitude}
	if !geo.ValidPoint(point) {
		return ErrInvalidCoordinates
	}

	merchant.UserID = existing.UserID
	merchant.CreatedAt = existing.CreatedAt

	if err := s.merchantRepo.Update(merchant); err != nil {
		logger.Error("Failed to update merchant", err, map[string]interface{}{
			"merchant_id": merchant.ID,
		})
		return err
	}

	logger.Info("Merchant updated successfully", map[string]interface{}{
		"merchant_id": merchant.ID,
	})
	return nil
}

func (s *merchantService) DeactivateMerchant(userID, id uint) error {
	existing, err := s.merchantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMerchantNotFound
		}
		return err
	}

	if existing.UserID != userID {
		logger.Warn("Merchant deactivation forbidden", map[string]interface{}{
			"merchant_id": id,
			"user_id":     userID,
		})
		return ErrMerchantAccessDenied
	}

	if err := s.merchantRepo.Deactivate(id); err != nil {
		return err
	}

	logger.Info("Merchant deactivated", map[string]interface{}{
		"merchant_id": id,
	})
	return nil
}
