package repository

import (
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(entry *model.AuditLog) error
	FindRecent(limit int) ([]model.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(entry *model.AuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to create audit log in database", err, map[string]interface{}{
			"action": entry.Action,
			"actor":  entry.Actor,
		})
		return err
	}
	return nil
}

func (r *auditRepository) FindRecent(limit int) ([]model.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []model.AuditLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		logger.Error("Failed to find audit logs in database", err, nil)
		return nil, err
	}
	return entries, nil
}
