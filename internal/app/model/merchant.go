package model

import (
	"time"

	"gorm.io/gorm"
)

type Merchant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"` // owning user
	User      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
	Name      string         `gorm:"not null" json:"name"`
	Category  string         `gorm:"index" json:"category"`
	Latitude  float64        `gorm:"type:decimal(10,8)" json:"latitude"`  // WGS84
	Longitude float64        `gorm:"type:decimal(11,8)" json:"longitude"` // WGS84
	Address   string         `gorm:"type:text" json:"address"`
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // soft delete only; deals keep referencing the row

	Deals []Deal `gorm:"foreignKey:MerchantID" json:"deals,omitempty"`
}

func (Merchant) TableName() string {
	return "merchants"
}
