package db

import (
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/pkg/geo"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Merchant{},
		&model.Deal{},
		&model.Claim{},
		&model.SavedDeal{},
		&model.RegionGate{},
		&model.AuditLog{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedRegionGates(); err != nil {
		logger.Error("Failed to seed region gates during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedRegionGates creates one enabled gate per known region so discovery has a
// row to consult from the first request.
func seedRegionGates() error {
	var count int64
	if err := DB.Model(&model.RegionGate{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Region gates already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding region gates...")

	totalInserted := 0
	for _, region := range geo.KnownRegions() {
		gate := model.RegionGate{
			Region:  string(region),
			Enabled: true,
		}
		if err := DB.Create(&gate).Error; err != nil {
			logger.Error("Failed to create region gate", err, map[string]interface{}{
				"region": region,
			})
			return err
		}
		totalInserted++
	}

	logger.Info("Region gates seeded successfully", map[string]interface{}{
		"total_gates": totalInserted,
	})
	return nil
}
