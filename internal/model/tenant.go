package model

import (
	"time"
)

// Subscription plans a tenant can be on. Free tenants are capped at a fixed
// number of notes; pro tenants are unlimited.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Tenant represents an isolated organization. Every user and note belongs to
// exactly one tenant, and the slug is the stable external identifier used in
// URLs. The slug is immutable after creation.
type Tenant struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Slug             string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name             string    `json:"name" gorm:"type:varchar(100);not null"`
	SubscriptionPlan string    `json:"subscription_plan" gorm:"type:varchar(20);not null;default:'free'"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
