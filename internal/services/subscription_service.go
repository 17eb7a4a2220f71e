package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/config"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/dto"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/models"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidPlan           = errors.New("invalid plan")
	ErrOrderNotFound         = errors.New("no subscription matches this order")
	ErrBadPaymentSignature   = errors.New("payment signature verification failed")
	ErrProviderNotConfigured = errors.New("payment provider credentials are not configured")
)

// Razorpay caps the receipt field at 40 characters.
const maxReceiptLen = 40

// subscriptionPeriod is the entitlement window granted per successful charge.
const subscriptionPeriod = 30 * 24 * time.Hour

// OrderAPI is the slice of the Razorpay client used here; *requests.Order
// satisfies it.
type OrderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type SubscriptionService struct {
	db        *gorm.DB
	orders    OrderAPI
	keyID     string
	keySecret string
}

func NewSubscriptionService(db *gorm.DB, cfg *config.Config) *SubscriptionService {
	s := &SubscriptionService{
		db:        db,
		keyID:     cfg.RazorpayKeyID,
		keySecret: cfg.RazorpayKeySecret,
	}
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		s.orders = razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret).Order
	}
	return s
}

// EnsureDefault creates the free/active row for a freshly created user.
// Re-delivery of the account-creation event is a no-op.
func (s *SubscriptionService) EnsureDefault(userID string) error {
	sub := models.Subscription{
		ID:     uuid.New(),
		UserID: userID,
		Plan:   models.PlanFree,
		Status: models.SubscriptionActive,
	}
	err := s.db.Where("user_id = ?", userID).FirstOrCreate(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to ensure default subscription: %w", err)
	}
	return nil
}

// GetByUser returns the authoritative subscription row, or a non-persisted
// free/active default when the user has none yet.
func (s *SubscriptionService) GetByUser(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Subscription{
			UserID: userID,
			Plan:   models.PlanFree,
			Status: models.SubscriptionActive,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return &sub, nil
}

// CreateOrder validates the plan, creates a Razorpay order for the
// server-side amount, and upserts the user's subscription row into
// pending/inactive. An earlier pending order is simply overwritten.
func (s *SubscriptionService) CreateOrder(userID, plan string) (*dto.CreateOrderResponse, error) {
	p, ok := Plans[plan]
	if !ok {
		return nil, ErrInvalidPlan
	}
	if s.orders == nil {
		return nil, ErrProviderNotConfigured
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(receipt) > maxReceiptLen {
		receipt = receipt[:maxReceiptLen]
	}

	order, err := s.orders.Create(map[string]interface{}{
		"amount":   p.Amount,
		"currency": p.Currency,
		"receipt":  receipt,
		"notes": map[string]interface{}{
			"user_id": userID,
			"plan":    plan,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, _ := order["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("razorpay order creation returned no order id")
	}

	if err := s.upsertPendingOrder(userID, plan, orderID); err != nil {
		return nil, err
	}

	return &dto.CreateOrderResponse{
		OrderID:  orderID,
		Amount:   p.Amount,
		Currency: p.Currency,
		KeyID:    s.keyID,
	}, nil
}

func (s *SubscriptionService) upsertPendingOrder(userID, plan, orderID string) error {
	var sub models.Subscription
	err := s.db.Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = models.Subscription{
			ID:              uuid.New(),
			UserID:          userID,
			Plan:            plan,
			Status:          models.SubscriptionInactive,
			RazorpayOrderID: orderID,
		}
		if err := s.db.Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	updates := map[string]interface{}{
		"plan":              plan,
		"status":            models.SubscriptionInactive,
		"razorpay_order_id": orderID,
	}
	if err := s.db.Model(&sub).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

// VerifyPayment re-derives trust from the provider signature before
// accepting a client-reported checkout success. A client-asserted boolean is
// never enough to activate.
func (s *SubscriptionService) VerifyPayment(userID string, req *dto.VerifyPaymentRequest) error {
	// Never run the HMAC check against an empty key.
	if s.keySecret == "" {
		return ErrProviderNotConfigured
	}

	params := map[string]interface{}{
		"razorpay_order_id":   req.RazorpayOrderID,
		"razorpay_payment_id": req.RazorpayPaymentID,
	}
	if !utils.VerifyPaymentSignature(params, req.RazorpaySignature, s.keySecret) {
		return ErrBadPaymentSignature
	}

	var sub models.Subscription
	err := s.db.Where("razorpay_order_id = ? AND user_id = ?", req.RazorpayOrderID, userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	return s.activate(&sub, "")
}

// HandleWebhookEvent routes an authenticated Razorpay event by exact type.
// Unknown types are logged and ignored so new provider events never break
// delivery. Events for orders or subscriptions not tracked locally are
// no-ops; the provider retries on non-2xx, so none of these are errors.
func (s *SubscriptionService) HandleWebhookEvent(event *dto.RazorpayWebhookEvent) error {
	switch event.Event {
	case "payment.captured":
		return s.handlePaymentCaptured(event)
	case "payment.failed":
		return s.handlePaymentFailed(event)
	case "subscription.charged":
		return s.handleSubscriptionCharged(event)
	case "subscription.cancelled":
		return s.handleSubscriptionCancelled(event)
	case "subscription.completed":
		return s.handleSubscriptionCompleted(event)
	default:
		slog.Info("ignoring unhandled razorpay event", "event", event.Event)
		return nil
	}
}

func (s *SubscriptionService) handlePaymentCaptured(event *dto.RazorpayWebhookEvent) error {
	if event.Payload.Payment == nil {
		return nil
	}
	payment := event.Payload.Payment.Entity

	var sub models.Subscription
	err := s.db.Where("razorpay_order_id = ?", payment.OrderID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Info("captured payment for untracked order", "order_id", payment.OrderID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	return s.activate(&sub, payment.SubscriptionID)
}

func (s *SubscriptionService) handlePaymentFailed(event *dto.RazorpayWebhookEvent) error {
	if event.Payload.Payment == nil {
		return nil
	}
	payment := event.Payload.Payment.Entity

	var sub models.Subscription
	err := s.db.Where("razorpay_order_id = ?", payment.OrderID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	// The row stays pending/inactive; the user can start a fresh order.
	slog.Warn("payment failed", "user_id", sub.UserID, "order_id", payment.OrderID, "reason", payment.ErrorReason)
	return nil
}

func (s *SubscriptionService) handleSubscriptionCharged(event *dto.RazorpayWebhookEvent) error {
	if event.Payload.Subscription == nil {
		return nil
	}
	entity := event.Payload.Subscription.Entity

	var sub models.Subscription
	err := s.db.Where("razorpay_subscription_id = ?", entity.ID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Info("charge for untracked subscription", "subscription_id", entity.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	// A fresh charge intentionally extends the current window.
	now := time.Now()
	base := now
	if sub.EndDate != nil && sub.EndDate.After(now) {
		base = *sub.EndDate
	}
	end := base.Add(subscriptionPeriod)

	updates := map[string]interface{}{
		"status":   models.SubscriptionActive,
		"end_date": end,
	}
	if err := s.db.Model(&sub).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to extend subscription: %w", err)
	}

	s.propagateEntitlements(sub.UserID, sub.Plan, models.SubscriptionActive)
	return nil
}

func (s *SubscriptionService) handleSubscriptionCancelled(event *dto.RazorpayWebhookEvent) error {
	if event.Payload.Subscription == nil {
		return nil
	}
	entity := event.Payload.Subscription.Entity

	var sub models.Subscription
	err := s.db.Where("razorpay_subscription_id = ?", entity.ID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	if err := s.db.Model(&sub).Update("status", models.SubscriptionCancelled).Error; err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	// On cancellation the profile reverts to the free tier.
	s.propagateEntitlements(sub.UserID, models.PlanFree, models.SubscriptionCancelled)
	return nil
}

func (s *SubscriptionService) handleSubscriptionCompleted(event *dto.RazorpayWebhookEvent) error {
	if event.Payload.Subscription == nil {
		return nil
	}
	entity := event.Payload.Subscription.Entity

	return s.db.Model(&models.Subscription{}).
		Where("razorpay_subscription_id = ?", entity.ID).
		Update("status", models.SubscriptionExpired).Error
}

// activate moves a paid-for row to active with a fresh 30-day window.
// Replayed captured-payment events land on the same result: the window is
// recomputed from now, not stacked.
func (s *SubscriptionService) activate(sub *models.Subscription, razorpaySubID string) error {
	now := time.Now()
	end := now.Add(subscriptionPeriod)

	updates := map[string]interface{}{
		"status":     models.SubscriptionActive,
		"start_date": now,
		"end_date":   end,
	}
	if razorpaySubID != "" {
		updates["razorpay_subscription_id"] = razorpaySubID
	}
	if err := s.db.Model(sub).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	s.propagateEntitlements(sub.UserID, sub.Plan, models.SubscriptionActive)
	return nil
}

// propagateEntitlements pushes the subscription outcome into the profile so
// downstream quota checks read one row. Best-effort: the subscription
// transition is already committed, so a failure here is logged, not raised.
func (s *SubscriptionService) propagateEntitlements(userID, plan, status string) {
	err := s.db.Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"plan":                plan,
			"subscription_status": status,
		}).Error
	if err != nil {
		slog.Error("failed to propagate entitlements", "user_id", userID, "plan", plan, "error", err)
	}
}
