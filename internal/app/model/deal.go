package model

import (
	"time"

	"gorm.io/gorm"
)

type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "daily"
	IntervalWeekly  RecurringInterval = "weekly"
	IntervalMonthly RecurringInterval = "monthly"
)

// Threshold returns the minimum elapsed time before a recurring deal is
// reposted again. Monthly is a fixed 30-day window, not calendar-month-aware.
func (i RecurringInterval) Threshold() (time.Duration, bool) {
	switch i {
	case IntervalDaily:
		return 24 * time.Hour, true
	case IntervalWeekly:
		return 7 * 24 * time.Hour, true
	case IntervalMonthly:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

type Deal struct {
	ID                 uint              `gorm:"primarykey" json:"id"`
	MerchantID         uint              `gorm:"not null;index" json:"merchant_id"`
	Merchant           Merchant          `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	Title              string            `gorm:"not null" json:"title"`
	Description        string            `gorm:"type:text" json:"description"`
	OriginalPrice      float64           `gorm:"not null" json:"original_price"`
	DiscountedPrice    float64           `gorm:"not null" json:"discounted_price"` // must stay below OriginalPrice
	DiscountPercentage float64           `json:"discount_percentage"`              // derived, stored redundantly for listing queries
	Category           string            `gorm:"index" json:"category"`
	StartTime          time.Time         `gorm:"not null" json:"start_time"`
	EndTime            time.Time         `gorm:"not null;index" json:"end_time"` // must be after StartTime
	MaxRedemptions     int               `gorm:"not null" json:"max_redemptions"`
	CurrentRedemptions int               `gorm:"not null;default:0" json:"current_redemptions"`
	IsActive           bool              `gorm:"default:true;index" json:"is_active"`
	IsRecurring        bool              `gorm:"default:false;index" json:"is_recurring"`
	RecurringInterval  RecurringInterval `gorm:"type:varchar(20)" json:"recurring_interval,omitempty"` // required iff IsRecurring
	LastRecurredAt     *time.Time        `json:"last_recurred_at,omitempty"`                           // last repost event
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"-"`

	Claims []Claim `gorm:"foreignKey:DealID" json:"-"`
}

func (Deal) TableName() string {
	return "deals"
}

// IsLive reports the liveness predicate: active, not yet expired, not exhausted.
func (d *Deal) IsLive(now time.Time) bool {
	return d.IsActive &&
		now.Before(d.EndTime) &&
		d.CurrentRedemptions < d.MaxRedemptions
}

// IsExpired reports whether the deal's window has closed.
func (d *Deal) IsExpired(now time.Time) bool {
	return !now.Before(d.EndTime)
}

// ComputeDiscountPercentage derives the stored percentage from the two prices.
func (d *Deal) ComputeDiscountPercentage() float64 {
	if d.OriginalPrice <= 0 {
		return 0
	}
	return (d.OriginalPrice - d.DiscountedPrice) / d.OriginalPrice * 100
}
