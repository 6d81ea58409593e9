package models

import (
	"time"

	"gorm.io/datatypes"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:50;uniqueIndex" json:"code"`
	Name        string    `gorm:"size:100;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	IsDefault   bool      `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Permission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex" json:"name"`
	Resource    string         `gorm:"size:50;index:idx_resource_action_scope" json:"resource"`
	Action      string         `gorm:"size:50;index:idx_resource_action_scope" json:"action"`
	Scope       string         `gorm:"size:50;index:idx_resource_action_scope" json:"scope"`
	Description string         `json:"description,omitempty"`
	Attributes  datatypes.JSON `json:"attributes,omitempty"` // ["*"] or ["!internal_notes", "!profile.salary"]
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// RolePermission is the join row between a role and a permission. The binding
// carries its own active flag, independent of both parents, so a grant can be
// switched off without deleting it. Bindings are never soft-deleted.
type RolePermission struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RoleID       uint        `gorm:"uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uint        `gorm:"uniqueIndex:idx_role_permission" json:"permission_id"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	Role         *Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
	Permission   *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"permission,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
