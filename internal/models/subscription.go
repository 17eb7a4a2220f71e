package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription plans.
const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionInactive  = "inactive"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Subscription is the billing state for one user. One row per user,
// maintained by upsert: creating a new order overwrites any pending one.
type Subscription struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                 string     `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	Plan                   string     `gorm:"size:20;not null;default:'free'" json:"plan"`
	Status                 string     `gorm:"size:20;not null;default:'active'" json:"status"`
	RazorpayOrderID        string     `gorm:"size:64;index" json:"razorpay_order_id"`
	RazorpaySubscriptionID string     `gorm:"size:64;index" json:"razorpay_subscription_id"`
	StartDate              *time.Time `json:"start_date"`
	EndDate                *time.Time `json:"end_date"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
