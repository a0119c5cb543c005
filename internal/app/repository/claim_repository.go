package repository

import (
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

type ClaimRepository interface {
	FindByUserAndDeal(userID, dealID uint) (*model.Claim, error)
	FindByUserID(userID uint) ([]model.Claim, error)
	// FindByMerchantID returns every claim against the merchant's deals,
	// with the deal preloaded. Used for redemption reporting.
	FindByMerchantID(merchantID uint) ([]model.Claim, error)
	CountByDealID(dealID uint) (int64, error)
}

type claimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) FindByUserAndDeal(userID, dealID uint) (*model.Claim, error) {
	var claim model.Claim
	err := r.db.Where("user_id = ? AND deal_id = ?", userID, dealID).First(&claim).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) FindByUserID(userID uint) ([]model.Claim, error) {
	var claims []model.Claim
	err := r.db.Where("user_id = ?", userID).
		Preload("Deal").
		Preload("Deal.Merchant").
		Order("claimed_at DESC").
		Find(&claims).Error
	if err != nil {
		logger.Error("Failed to find claims by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) FindByMerchantID(merchantID uint) ([]model.Claim, error) {
	var claims []model.Claim
	err := r.db.Model(&model.Claim{}).
		Joins("JOIN deals ON deals.id = claims.deal_id").
		Where("deals.merchant_id = ?", merchantID).
		Preload("Deal").
		Order("claims.claimed_at DESC").
		Find(&claims).Error
	if err != nil {
		logger.Error("Failed to find claims by merchant ID in database", err, map[string]interface{}{
			"merchant_id": merchantID,
		})
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) CountByDealID(dealID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Claim{}).Where("deal_id = ?", dealID).Count(&count).Error
	if err != nil {
		logger.Error("Failed to count claims by deal ID in database", err, map[string]interface{}{
			"deal_id": dealID,
		})
		return 0, err
	}
	return count, nil
}
