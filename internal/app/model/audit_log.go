package model

import (
	"time"
)

// AuditLog is one record per state-changing request. Writes are fire-and-forget;
// a failed audit write never fails the primary request.
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	EntryID   string    `gorm:"type:varchar(36);uniqueIndex" json:"entry_id"` // uuid
	Actor     string    `gorm:"not null;index" json:"actor"`                  // user id or "anonymous"
	Action    string    `gorm:"not null;index" json:"action"`
	Context   string    `gorm:"type:text" json:"context"` // serialized request context
	Outcome   string    `gorm:"not null" json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
