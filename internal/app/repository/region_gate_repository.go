package repository

import (
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegionGateRepository interface {
	FindAll() ([]model.RegionGate, error)
	FindByRegion(region string) (*model.RegionGate, error)
	// Upsert creates the gate row or flips its enabled flag.
	Upsert(region string, enabled bool) (*model.RegionGate, error)
}

type regionGateRepository struct {
	db *gorm.DB
}

func NewRegionGateRepository(db *gorm.DB) RegionGateRepository {
	return &regionGateRepository{db: db}
}

func (r *regionGateRepository) FindAll() ([]model.RegionGate, error) {
	var gates []model.RegionGate
	if err := r.db.Order("region ASC").Find(&gates).Error; err != nil {
		logger.Error("Failed to find region gates in database", err, nil)
		return nil, err
	}
	return gates, nil
}

func (r *regionGateRepository) FindByRegion(region string) (*model.RegionGate, error) {
	var gate model.RegionGate
	if err := r.db.Where("region = ?", region).First(&gate).Error; err != nil {
		return nil, err
	}
	return &gate, nil
}

func (r *regionGateRepository) Upsert(region string, enabled bool) (*model.RegionGate, error) {
	logger.Debug("Upserting region gate in database", map[string]interface{}{
		"region":  region,
		"enabled": enabled,
	})

	gate := model.RegionGate{
		Region:  region,
		Enabled: enabled,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(&gate).Error
	if err != nil {
		logger.Error("Failed to upsert region gate in database", err, map[string]interface{}{
			"region": region,
		})
		return nil, err
	}

	// Re-read so callers get the persisted row regardless of conflict path.
	return r.FindByRegion(region)
}
