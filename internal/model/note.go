package model

import (
	"time"
)

// Note represents a note created by a user. UserID and TenantID are fixed at
// creation; every read and write is filtered by the caller's tenant, so a note
// from another tenant is indistinguishable from one that does not exist.
type Note struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:text"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
