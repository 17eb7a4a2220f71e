package services

import (
	"encoding/json"
	"testing"

	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/dto"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clerkEvent(eventType, payload string) *dto.ClerkWebhookEvent {
	return &dto.ClerkWebhookEvent{
		Type: eventType,
		Data: json.RawMessage(payload),
	}
}

func newTestUserService(t *testing.T) (*UserService, *SubscriptionService) {
	t.Helper()
	db := openTestDB(t)
	subs := &SubscriptionService{db: db, keyID: "rzp_test_key", keySecret: "test_secret"}
	return NewUserService(db, subs), subs
}

func TestUserCreatedProvisionsProfileAndFreeSubscription(t *testing.T) {
	s, subs := newTestUserService(t)

	err := s.HandleIdentityEvent(clerkEvent("user.created", `{
		"id": "user_abc",
		"email_addresses": [{"email_address": "a@b.com"}],
		"first_name": "Asha",
		"last_name": "Nair"
	}`))
	require.NoError(t, err)

	var profile models.UserProfile
	require.NoError(t, s.db.First(&profile, "user_id = ?", "user_abc").Error)
	assert.Equal(t, "a@b.com", profile.Email)
	assert.Equal(t, "Asha Nair", profile.FullName)
	assert.Equal(t, models.PlanFree, profile.Plan)

	sub, err := subs.GetByUser("user_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.Plan)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
}

func TestUserCreatedRedeliveryIsIdempotent(t *testing.T) {
	s, _ := newTestUserService(t)
	payload := `{"id": "user_abc", "email_addresses": [{"email_address": "a@b.com"}]}`

	require.NoError(t, s.HandleIdentityEvent(clerkEvent("user.created", payload)))
	require.NoError(t, s.HandleIdentityEvent(clerkEvent("user.created", payload)))

	var profiles int64
	s.db.Model(&models.UserProfile{}).Where("user_id = ?", "user_abc").Count(&profiles)
	assert.EqualValues(t, 1, profiles)

	var subs int64
	s.db.Model(&models.Subscription{}).Where("user_id = ?", "user_abc").Count(&subs)
	assert.EqualValues(t, 1, subs)
}

func TestUserUpdated(t *testing.T) {
	s, _ := newTestUserService(t)
	require.NoError(t, s.HandleIdentityEvent(clerkEvent("user.created",
		`{"id": "user_abc", "email_addresses": [{"email_address": "a@b.com"}]}`)))

	err := s.HandleIdentityEvent(clerkEvent("user.updated", `{
		"id": "user_abc",
		"email_addresses": [{"email_address": "new@b.com"}],
		"first_name": "Asha"
	}`))
	require.NoError(t, err)

	var profile models.UserProfile
	require.NoError(t, s.db.First(&profile, "user_id = ?", "user_abc").Error)
	assert.Equal(t, "new@b.com", profile.Email)
	assert.Equal(t, "Asha", profile.FullName)
}

func TestUserDeleted(t *testing.T) {
	s, _ := newTestUserService(t)
	require.NoError(t, s.HandleIdentityEvent(clerkEvent("user.created", `{"id": "user_abc"}`)))

	require.NoError(t, s.HandleIdentityEvent(clerkEvent("user.deleted", `{"id": "user_abc"}`)))

	var count int64
	s.db.Model(&models.UserProfile{}).Where("user_id = ?", "user_abc").Count(&count)
	assert.Zero(t, count)
}

func TestUnknownIdentityEventIsIgnored(t *testing.T) {
	s, _ := newTestUserService(t)

	assert.NoError(t, s.HandleIdentityEvent(clerkEvent("session.created", `{}`)))
}

func TestIdentityEventMissingUserID(t *testing.T) {
	s, _ := newTestUserService(t)

	assert.Error(t, s.HandleIdentityEvent(clerkEvent("user.created", `{}`)))
}
