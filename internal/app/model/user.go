package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser     UserRole = "user"     // regular consumer account
	RoleMerchant UserRole = "merchant" // can own merchants and post deals
	RoleAdmin    UserRole = "admin"    // can toggle region gates and trigger sweeps
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Merchants []Merchant `gorm:"foreignKey:UserID" json:"merchants,omitempty"` // owned merchant profiles
}

func (User) TableName() string {
	return "users"
}
