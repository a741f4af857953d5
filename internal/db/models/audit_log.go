package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records an administrative change.
type AuditLog struct {
	// ID is a random UUID assigned on creation.
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	// UserID is the acting user; zero for system changes.
	UserID uint64 `gorm:"index" json:"userId"`
	// Action names what happened, e.g. "update_user_permissions".
	Action string `gorm:"size:100;not null;index" json:"action"`
	// Entity is the kind of record changed, e.g. "user" or "role_permissions".
	Entity string `gorm:"size:100;not null" json:"entity"`
	// EntityID identifies the changed record.
	EntityID string `gorm:"size:100" json:"entityId"`
	// Details carries the change payload as JSON.
	Details string `gorm:"type:text" json:"details"`
	// CreatedAt is the timestamp of the change (managed by GORM).
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// TableName specifies the database table name for the AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate assigns a UUID when none is set.
func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	return nil
}
