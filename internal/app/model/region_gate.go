package model

import (
	"time"
)

// RegionGate enables or disables deal discovery for a named region.
// Mutated only by admins; read on every located discovery request.
type RegionGate struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Region    string    `gorm:"uniqueIndex;not null;type:varchar(10)" json:"region"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RegionGate) TableName() string {
	return "region_gates"
}
