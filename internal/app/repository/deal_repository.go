package repository

import (
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

type DealRepository interface {
	Create(deal *model.Deal) error
	FindByID(id uint) (*model.Deal, error)
	FindByMerchantID(merchantID uint) ([]model.Deal, error)
	// FindLive returns deals satisfying the liveness predicate, with their
	// merchant preloaded. Deals of inactive merchants are excluded.
	FindLive(now time.Time) ([]model.Deal, error)
	// FindExpired returns active deals whose window has closed.
	FindExpired(now time.Time) ([]model.Deal, error)
	Update(deal *model.Deal) error
	Delete(id uint) error
	// MarkRecurred stamps last_recurred_at on the original deal after a repost.
	// The original row is otherwise left untouched as history.
	MarkRecurred(id uint, at time.Time) error
}

type dealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(deal *model.Deal) error {
	logger.Debug("Creating deal in database", map[string]interface{}{
		"title":       deal.Title,
		"merchant_id": deal.MerchantID,
		"category":    deal.Category,
	})

	if err := r.db.Create(deal).Error; err != nil {
		logger.Error("Failed to create deal in database", err, map[string]interface{}{
			"title":       deal.Title,
			"merchant_id": deal.MerchantID,
		})
		return err
	}

	logger.Debug("Deal created in database", map[string]interface{}{
		"deal_id": deal.ID,
	})
	return nil
}

func (r *dealRepository) FindByID(id uint) (*model.Deal, error) {
	var deal model.Deal
	if err := r.db.Preload("Merchant").First(&deal, id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *dealRepository) FindByMerchantID(merchantID uint) ([]model.Deal, error) {
	var deals []model.Deal
	err := r.db.Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&deals).Error
	if err != nil {
		logger.Error("Failed to find deals by merchant ID in database", err, map[string]interface{}{
			"merchant_id": merchantID,
		})
		return nil, err
	}
	return deals, nil
}

func (r *dealRepository) FindLive(now time.Time) ([]model.Deal, error) {
	logger.Debug("Finding live deals in database", map[string]interface{}{
		"now": now,
	})

	var deals []model.Deal
	err := r.db.Model(&model.Deal{}).
		Joins("JOIN merchants ON merchants.id = deals.merchant_id").
		Where("merchants.is_active = ?", true).
		Where("merchants.deleted_at IS NULL").
		Where("deals.is_active = ?", true).
		Where("deals.end_time > ?", now).
		Where("deals.current_redemptions < deals.max_redemptions").
		Preload("Merchant").
		Order("deals.created_at DESC").
		Find(&deals).Error
	if err != nil {
		logger.Error("Failed to find live deals in database", err, nil)
		return nil, err
	}

	logger.Debug("Live deals found in database", map[string]interface{}{
		"count": len(deals),
	})
	return deals, nil
}

func (r *dealRepository) FindExpired(now time.Time) ([]model.Deal, error) {
	var deals []model.Deal
	err := r.db.Where("is_active = ?", true).
		Where("end_time <= ?", now).
		Find(&deals).Error
	if err != nil {
		logger.Error("Failed to find expired deals in database", err, nil)
		return nil, err
	}
	return deals, nil
}

func (r *dealRepository) Update(deal *model.Deal) error {
	logger.Debug("Updating deal in database", map[string]interface{}{
		"deal_id": deal.ID,
	})

	if err := r.db.Save(deal).Error; err != nil {
		logger.Error("Failed to update deal in database", err, map[string]interface{}{
			"deal_id": deal.ID,
		})
		return err
	}
	return nil
}

func (r *dealRepository) Delete(id uint) error {
	logger.Debug("Deleting deal from database", map[string]interface{}{
		"deal_id": id,
	})

	if err := r.db.Delete(&model.Deal{}, id).Error; err != nil {
		logger.Error("Failed to delete deal from database", err, map[string]interface{}{
			"deal_id": id,
		})
		return err
	}
	return nil
}

func (r *dealRepository) MarkRecurred(id uint, at time.Time) error {
	logger.Debug("Marking deal as recurred in database", map[string]interface{}{
		"deal_id": id,
		"at":      at,
	})

	if err := r.db.Model(&model.Deal{}).Where("id = ?", id).
		Update("last_recurred_at", at).Error; err != nil {
		logger.Error("Failed to mark deal as recurred in database", err, map[string]interface{}{
			"deal_id": id,
		})
		return err
	}
	return nil
}
