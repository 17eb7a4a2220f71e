package handlers

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/config"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/models"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWebhookApp(t *testing.T, clerkSecret string) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	subs := services.NewSubscriptionService(db, &config.Config{})
	users := services.NewUserService(db, subs)
	h := NewWebhookHandler(users, subs, clerkSecret, testRazorpaySecret)

	app := fiber.New()
	app.Post("/api/webhooks/clerk", h.HandleClerk)
	app.Post("/api/webhooks/razorpay", h.HandleRazorpay)
	return app, db
}

func TestClerkWebhookMissingHeaders(t *testing.T) {
	app, _ := newWebhookApp(t, testClerkSecret)

	payload := `{"type":"user.created","data":{"id":"user_abc"}}`
	id, ts, sig := svixSign(t, testClerkSecret, "msg_1", payload, time.Now())

	// Each header is required; drop one at a time.
	cases := []map[string]string{
		{"svix-timestamp": ts, "svix-signature": sig},
		{"svix-id": id, "svix-signature": sig},
		{"svix-id": id, "svix-timestamp": ts},
	}
	for _, headers := range cases {
		req := jsonRequest(t, http.MethodPost, "/api/webhooks/clerk", payload)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestClerkWebhookMissingSecretIsServerError(t *testing.T) {
	app, _ := newWebhookApp(t, "")

	payload := `{"type":"user.created","data":{"id":"user_abc"}}`
	id, ts, sig := svixSign(t, testClerkSecret, "msg_1", payload, time.Now())
	req := jsonRequest(t, http.MethodPost, "/api/webhooks/clerk", payload)
	req.Header.Set("svix-id", id)
	req.Header.Set("svix-timestamp", ts)
	req.Header.Set("svix-signature", sig)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestClerkWebhookValidSignatureCreatesUser(t *testing.T) {
	app, db := newWebhookApp(t, testClerkSecret)

	payload := `{"type":"user.created","data":{"id":"user_abc","email_addresses":[{"email_address":"a@b.com"}],"first_name":"Asha","last_name":"Nair"}}`
	id, ts, sig := svixSign(t, testClerkSecret, "msg_1", payload, time.Now())
	req := jsonRequest(t, http.MethodPost, "/api/webhooks/clerk", payload)
	req.Header.Set("svix-id", id)
	req.Header.Set("svix-timestamp", ts)
	req.Header.Set("svix-signature", sig)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var profile models.UserProfile
	require.NoError(t, db.First(&profile, "user_id = ?", "user_abc").Error)
	assert.Equal(t, "a@b.com", profile.Email)

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "user_id = ?", "user_abc").Error)
	assert.Equal(t, models.PlanFree, sub.Plan)
}

func TestClerkWebhookTamperedBodyIsRejected(t *testing.T) {
	app, db := newWebhookApp(t, testClerkSecret)

	payload := `{"type":"user.created","data":{"id":"user_abc"}}`
	id, ts, sig := svixSign(t, testClerkSecret, "msg_1", payload, time.Now())

	// One byte changed in the signed body must fail verification.
	tampered := `{"type":"user.created","data":{"id":"user_abd"}}`
	req := jsonRequest(t, http.MethodPost, "/api/webhooks/clerk", tampered)
	req.Header.Set("svix-id", id)
	req.Header.Set("svix-timestamp", ts)
	req.Header.Set("svix-signature", sig)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	db.Model(&models.UserProfile{}).Count(&count)
	assert.Zero(t, count, "no state mutation on auth failure")
}

func TestRazorpayWebhookMissingSignature(t *testing.T) {
	app, _ := newWebhookApp(t, testClerkSecret)

	req := jsonRequest(t, http.MethodPost, "/api/webhooks/razorpay", `{"event":"payment.captured"}`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRazorpayWebhookBadSignature(t *testing.T) {
	app, _ := newWebhookApp(t, testClerkSecret)

	body := `{"event":"payment.captured"}`
	req := jsonRequest(t, http.MethodPost, "/api/webhooks/razorpay", body)
	req.Header.Set("X-Razorpay-Signature", razorpaySign(body, "wrong_secret"))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRazorpayWebhookMissingSecretIsServerError(t *testing.T) {
	db := openTestDB(t)
	subs := services.NewSubscriptionService(db, &config.Config{})
	users := services.NewUserService(db, subs)
	h := NewWebhookHandler(users, subs, testClerkSecret, "")

	app := fiber.New()
	app.Post("/api/webhooks/razorpay", h.HandleRazorpay)

	require.NoError(t, db.Create(&models.Subscription{
		ID:              uuid.New(),
		UserID:          "user_1",
		Plan:            models.PlanPro,
		Status:          models.SubscriptionInactive,
		RazorpayOrderID: "order_1",
	}).Error)

	// A signature over the empty key must not be accepted as authentic.
	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","status":"captured"}}}}`
	req := jsonRequest(t, http.MethodPost, "/api/webhooks/razorpay", body)
	req.Header.Set("X-Razorpay-Signature", razorpaySign(body, ""))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "razorpay_order_id = ?", "order_1").Error)
	assert.Equal(t, models.SubscriptionInactive, sub.Status, "no activation without a configured secret")
}

func TestRazorpayWebhookCapturedActivates(t *testing.T) {
	app, db := newWebhookApp(t, testClerkSecret)

	require.NoError(t, db.Create(&models.Subscription{
		ID:              uuid.New(),
		UserID:          "user_1",
		Plan:            models.PlanPro,
		Status:          models.SubscriptionInactive,
		RazorpayOrderID: "order_1",
	}).Error)

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","status":"captured"}}}}`
	req := jsonRequest(t, http.MethodPost, "/api/webhooks/razorpay", body)
	req.Header.Set("X-Razorpay-Signature", razorpaySign(body, testRazorpaySecret))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "razorpay_order_id = ?", "order_1").Error)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	require.NotNil(t, sub.EndDate)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *sub.EndDate, time.Minute)
}

func TestRazorpayWebhookUnknownEventStill200(t *testing.T) {
	app, _ := newWebhookApp(t, testClerkSecret)

	body := `{"event":"invoice.paid","payload":{}}`
	req := jsonRequest(t, http.MethodPost, "/api/webhooks/razorpay", body)
	req.Header.Set("X-Razorpay-Signature", razorpaySign(body, testRazorpaySecret))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(b))
}
