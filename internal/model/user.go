package model

import (
	"time"
)

// Roles a user can hold within its tenant.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents the user model stored in the database. A user belongs to
// exactly one tenant for its whole lifetime.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         string    `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	TenantID     uint      `json:"tenant_id" gorm:"index;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
