package model

import (
	"time"
)

// SavedDeal is a bookmark, independent of Claim. Saving twice is a no-op and
// removal is a hard delete, so the unique index never blocks a re-save.
type SavedDeal struct {
	ID      uint      `gorm:"primarykey" json:"id"`
	UserID  uint      `gorm:"not null;index:idx_saved_user_deal,unique" json:"user_id"`
	DealID  uint      `gorm:"not null;index:idx_saved_user_deal,unique" json:"deal_id"`
	SavedAt time.Time `gorm:"not null" json:"saved_at"`

	Deal Deal `gorm:"foreignKey:DealID" json:"deal,omitempty"`
}

func (SavedDeal) TableName() string {
	return "saved_deals"
}
