package models

import "time"

// UserProfile mirrors the Clerk account plus entitlement flags derived from
// the subscription state. Entitlements are written by the payment
// reconciliation path, never by the user directly.
type UserProfile struct {
	UserID             string    `gorm:"size:64;primaryKey" json:"user_id"`
	Email              string    `gorm:"size:255;index" json:"email"`
	FullName           string    `gorm:"size:255" json:"full_name"`
	Plan               string    `gorm:"size:20;not null;default:'free'" json:"plan"`
	SubscriptionStatus string    `gorm:"size:20;not null;default:'active'" json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
