package models

import (
	"time"

	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

// RoleTemplate holds the default permission set of a role.
// There is at most one row per role; writes replace the whole map.
type RoleTemplate struct {
	// Role is the role name and primary key.
	Role string `gorm:"primaryKey;size:50" json:"role"`
	// Permissions maps permission keys to granted (true) or denied (false).
	Permissions permission.Grants `gorm:"serializer:json;type:text" json:"permissions"`
	// Description is a free-text explanation of the role.
	Description string `gorm:"size:255" json:"description"`
	// CreatedAt is the timestamp when the template was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the template was last replaced (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the RoleTemplate model.
func (RoleTemplate) TableName() string {
	return "role_permissions"
}
