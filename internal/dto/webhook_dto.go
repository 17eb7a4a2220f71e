package dto

import "encoding/json"

// ClerkWebhookEvent is a Clerk account-lifecycle event (signed via svix).
type ClerkWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type ClerkEmailAddress struct {
	EmailAddress string `json:"email_address"`
}

type ClerkUserData struct {
	ID             string              `json:"id"`
	EmailAddresses []ClerkEmailAddress `json:"email_addresses"`
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
}

// RazorpayWebhookEvent wraps the entities Razorpay delivers per event type.
type RazorpayWebhookEvent struct {
	Event   string          `json:"event"`
	Payload RazorpayPayload `json:"payload"`
}

type RazorpayPayload struct {
	Payment      *RazorpayPaymentWrapper      `json:"payment,omitempty"`
	Subscription *RazorpaySubscriptionWrapper `json:"subscription,omitempty"`
}

type RazorpayPaymentWrapper struct {
	Entity RazorpayPaymentEntity `json:"entity"`
}

type RazorpayPaymentEntity struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	SubscriptionID string `json:"subscription_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	ErrorReason    string `json:"error_reason"`
}

type RazorpaySubscriptionWrapper struct {
	Entity RazorpaySubscriptionEntity `json:"entity"`
}

type RazorpaySubscriptionEntity struct {
	ID         string `json:"id"`
	PlanID     string `json:"plan_id"`
	Status     string `json:"status"`
	CurrentEnd int64  `json:"current_end"`
}
