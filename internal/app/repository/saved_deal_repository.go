package repository

import (
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

type SavedDealRepository interface {
	Create(item *model.SavedDeal) error
	FindByUserID(userID uint) ([]model.SavedDeal, error)
	FindByUserAndDeal(userID, dealID uint) (*model.SavedDeal, error)
	Delete(userID, dealID uint) error
}

type savedDealRepository struct {
	db *gorm.DB
}

func NewSavedDealRepository(db *gorm.DB) SavedDealRepository {
	return &savedDealRepository{db: db}
}

func (r *savedDealRepository) Create(item *model.SavedDeal) error {
	logger.Debug("Creating saved deal in database", map[string]interface{}{
		"user_id": item.UserID,
		"deal_id": item.DealID,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create saved deal in database", err, map[string]interface{}{
			"user_id": item.UserID,
			"deal_id": item.DealID,
		})
		return err
	}
	return nil
}

func (r *savedDealRepository) FindByUserID(userID uint) ([]model.SavedDeal, error) {
	var items []model.SavedDeal
	err := r.db.Where("user_id = ?", userID).
		Preload("Deal", func(db *gorm.DB) *gorm.DB {
			return db.Preload("Merchant")
		}).
		Order("saved_at DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find saved deals by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

func (r *savedDealRepository) FindByUserAndDeal(userID, dealID uint) (*model.SavedDeal, error) {
	var item model.SavedDeal
	err := r.db.Where("user_id = ? AND deal_id = ?", userID, dealID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *savedDealRepository) Delete(userID, dealID uint) error {
	logger.Debug("Deleting saved deal from database", map[string]interface{}{
		"user_id": userID,
		"deal_id": dealID,
	})

	if err := r.db.Where("user_id = ? AND deal_id = ?", userID, dealID).
		Delete(&model.SavedDeal{}).Error; err != nil {
		logger.Error("Failed to delete saved deal from database", err, map[string]interface{}{
			"user_id": userID,
			"deal_id": dealID,
		})
		return err
	}
	return nil
}
