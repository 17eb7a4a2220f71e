package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/dto"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/services"
	"github.com/razorpay/razorpay-go/utils"
	svix "github.com/svix/svix-webhooks/go"
)

// WebhookHandler receives the asynchronous callbacks from the identity and
// payment providers. Signature verification is the authentication for both
// endpoints; nothing is mutated before it passes.
type WebhookHandler struct {
	users          *services.UserService
	subscriptions  *services.SubscriptionService
	clerkSecret    string
	razorpaySecret string
}

func NewWebhookHandler(users *services.UserService, subscriptions *services.SubscriptionService, clerkSecret, razorpaySecret string) *WebhookHandler {
	return &WebhookHandler{
		users:          users,
		subscriptions:  subscriptions,
		clerkSecret:    clerkSecret,
		razorpaySecret: razorpaySecret,
	}
}

// HandleClerk handles POST /api/webhooks/clerk. Clerk signs with svix, which
// needs all three headers present before verification is even attempted.
func (h *WebhookHandler) HandleClerk(c *fiber.Ctx) error {
	svixID := c.Get("svix-id")
	svixTimestamp := c.Get("svix-timestamp")
	svixSignature := c.Get("svix-signature")
	if svixID == "" || svixTimestamp == "" || svixSignature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing svix headers",
		})
	}

	// A missing secret is a deployment fault, not a bad request.
	if h.clerkSecret == "" {
		slog.Error("CLERK_WEBHOOK_SECRET is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Identity webhook secret is not configured",
		})
	}

	wh, err := svix.NewWebhook(h.clerkSecret)
	if err != nil {
		slog.Error("invalid clerk webhook secret", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Identity webhook secret is invalid",
		})
	}

	headers := http.Header{}
	headers.Set("svix-id", svixID)
	headers.Set("svix-timestamp", svixTimestamp)
	headers.Set("svix-signature", svixSignature)

	body := c.Body()
	if err := wh.Verify(body, headers); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhook signature verification failed",
		})
	}

	var event dto.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	if err := h.users.HandleIdentityEvent(&event); err != nil {
		slog.Error("clerk event handling failed", "type", event.Type, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process identity event",
		})
	}

	slog.Info("clerk event processed", "type", event.Type)
	return c.SendStatus(fiber.StatusOK)
}

// HandleRazorpay handles POST /api/webhooks/razorpay. Once the payload is
// authenticated and parsed the response is 2xx, including for event types
// the dispatcher ignores, so the provider never retry-storms.
func (h *WebhookHandler) HandleRazorpay(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing X-Razorpay-Signature header",
		})
	}

	// Without a secret the HMAC check would verify against the empty key,
	// which anyone can sign with. Refuse dispatch instead.
	if h.razorpaySecret == "" {
		slog.Error("RAZORPAY_WEBHOOK_SECRET is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Payment webhook secret is not configured",
		})
	}

	body := c.Body()
	if !utils.VerifyWebhookSignature(string(body), signature, h.razorpaySecret) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhook signature verification failed",
		})
	}

	var event dto.RazorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	if err := h.subscriptions.HandleWebhookEvent(&event); err != nil {
		slog.Error("razorpay event handling failed", "event", event.Event, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process payment event",
		})
	}

	slog.Info("razorpay event processed", "event", event.Event)
	return c.SendString("ok")
}
