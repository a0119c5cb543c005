package model

import (
	"time"
)

type ClaimStatus string

const (
	ClaimStatusRedeemed ClaimStatus = "redeemed"
)

// Claim records that a user redeemed a deal exactly once. Rows are never
// updated or deleted; they survive deal deletion as a historical record.
type Claim struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	UserID    uint        `gorm:"not null;index:idx_claims_user_deal,unique" json:"user_id"`
	DealID    uint        `gorm:"not null;index:idx_claims_user_deal,unique" json:"deal_id"`
	Status    ClaimStatus `gorm:"type:varchar(20);default:'redeemed'" json:"status"`
	ClaimedAt time.Time   `gorm:"not null" json:"claimed_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Deal Deal `gorm:"foreignKey:DealID" json:"deal,omitempty"`
}

func (Claim) TableName() string {
	return "claims"
}
