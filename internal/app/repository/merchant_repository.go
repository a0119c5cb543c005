package repository

import (
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

type MerchantRepository interface {
	Create(merchant *model.Merchant) error
	FindByID(id uint) (*model.Merchant, error)
	FindByUserID(userID uint) ([]model.Merchant, error)
	FindAll(activeOnly bool) ([]model.Merchant, error)
	Update(merchant *model.Merchant) error
	Deactivate(id uint) error
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) Create(merchant *model.Merchant) error {
	logger.Debug("Creating merchant in database", map[string]interface{}{
		"name":     merchant.Name,
		"user_id":  merchant.UserID,
		"category": merchant.Category,
	})

	if err := r.db.Create(merchant).Error; err != nil {
		logger.Error("Failed to create merchant in database", err, map[string]interface{}{
			"name":    merchant.Name,
			"user_id": merchant.UserID,
		})
		return err
	}

	logger.Debug("Merchant created in database", map[string]interface{}{
		"merchant_id": merchant.ID,
	})
	return nil
}

func (r *merchantRepository) FindByID(id uint) (*model.Merchant, error) {
	var merchant model.Merchant
	if err := r.db.First(&merchant, id).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) FindByUserID(userID uint) ([]model.Merchant, error) {
	var merchants []model.Merchant
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&merchants).Error
	if err != nil {
		logger.Error("Failed to find merchants by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return merchants, nil
}

func (r *merchantRepository) FindAll(activeOnly bool) ([]model.Merchant, error) {
	query := r.db.Model(&model.Merchant{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var merchants []model.Merchant
	if err := query.Order("created_at DESC").Find(&merchants).Error; err != nil {
		logger.Error("Failed to find merchants in database", err, nil)
		return nil, err
	}
	return merchants, nil
}

func (r *merchantRepository) Update(merchant *model.Merchant) error {
	logger.Debug("Updating merchant in database", map[string]interface{}{
		"merchant_id": merchant.ID,
	})

	if err := r.db.Save(merchant).Error; err != nil {
		logger.Error("Failed to update merchant in database", err, map[string]interface{}{
			"merchant_id": merchant.ID,
		})
		return err
	}
	return nil
}

// Deactivate soft-removes a merchant from discovery. The row stays in place so
// existing deals keep a valid reference.
func (r *merchantRepository) Deactivate(id uint) error {
	logger.Debug("Deactivating merchant in database", map[string]interface{}{
		"merchant_id": id,
	})

	if err := r.db.Model(&model.Merchant{}).Where("id = ?", id).
		Update("is_active", false).Error; err != nil {
		logger.Error("Failed to deactivate merchant in database", err, map[string]interface{}{
			"merchant_id": id,
		})
		return err
	}
	return nil
}
