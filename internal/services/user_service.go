package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/dto"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/models"
	"gorm.io/gorm"
)

type UserService struct {
	db            *gorm.DB
	subscriptions *SubscriptionService
}

func NewUserService(db *gorm.DB, subscriptions *SubscriptionService) *UserService {
	return &UserService{db: db, subscriptions: subscriptions}
}

// HandleIdentityEvent applies a Clerk account-lifecycle event. The payload
// is already signature-verified by the webhook handler.
func (s *UserService) HandleIdentityEvent(event *dto.ClerkWebhookEvent) error {
	switch event.Type {
	case "user.created":
		return s.handleUserCreated(event.Data)
	case "user.updated":
		return s.handleUserUpdated(event.Data)
	case "user.deleted":
		return s.handleUserDeleted(event.Data)
	default:
		slog.Info("ignoring unhandled clerk event", "type", event.Type)
		return nil
	}
}

func (s *UserService) handleUserCreated(data json.RawMessage) error {
	var user dto.ClerkUserData
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("invalid user.created payload: %w", err)
	}
	if user.ID == "" {
		return fmt.Errorf("user.created payload missing user id")
	}

	profile := models.UserProfile{
		UserID:             user.ID,
		Email:              primaryEmail(&user),
		FullName:           fullName(&user),
		Plan:               models.PlanFree,
		SubscriptionStatus: models.SubscriptionActive,
	}
	if err := s.db.Where("user_id = ?", user.ID).FirstOrCreate(&profile).Error; err != nil {
		return fmt.Errorf("failed to create user profile: %w", err)
	}

	return s.subscriptions.EnsureDefault(user.ID)
}

func (s *UserService) handleUserUpdated(data json.RawMessage) error {
	var user dto.ClerkUserData
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("invalid user.updated payload: %w", err)
	}
	if user.ID == "" {
		return fmt.Errorf("user.updated payload missing user id")
	}

	return s.db.Model(&models.UserProfile{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{
			"email":     primaryEmail(&user),
			"full_name": fullName(&user),
		}).Error
}

func (s *UserService) handleUserDeleted(data json.RawMessage) error {
	var user dto.ClerkUserData
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("invalid user.deleted payload: %w", err)
	}
	if user.ID == "" {
		return fmt.Errorf("user.deleted payload missing user id")
	}

	// Dependent rows (documents, subscription) are removed by FK cascade.
	return s.db.Where("user_id = ?", user.ID).Delete(&models.UserProfile{}).Error
}

func primaryEmail(user *dto.ClerkUserData) string {
	if len(user.EmailAddresses) > 0 {
		return user.EmailAddresses[0].EmailAddress
	}
	return ""
}

func fullName(user *dto.ClerkUserData) string {
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
