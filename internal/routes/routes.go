package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/config"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/handlers"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/middleware"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/ratelimit"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	healthHandler *handlers.HealthHandler,
	documentHandler *handlers.DocumentHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	api := app.Group("/api")

	// Health + public pricing
	api.Get("/health", healthHandler.Check)
	api.Get("/plans", subscriptionHandler.Plans)

	// Documents (Clerk JWT required). Upload and retry are the abuse
	// surface, so they carry per-user rate limits.
	docs := api.Group("/documents", middleware.ClerkProtected(cfg))
	docs.Get("/", documentHandler.List)
	docs.Post("/",
		limiter.Middleware("documents:create", ratelimit.Config{Window: time.Minute, MaxRequests: 10}),
		documentHandler.Create)
	docs.Post("/retry",
		limiter.Middleware("documents:retry", ratelimit.Config{Window: time.Minute, MaxRequests: 10}),
		documentHandler.Retry)
	docs.Post("/export", documentHandler.Export)

	// Subscription (Clerk JWT required)
	sub := api.Group("/subscription", middleware.ClerkProtected(cfg))
	sub.Post("/create-order", subscriptionHandler.CreateOrder)
	sub.Get("/status", subscriptionHandler.Status)
	sub.Post("/verify-payment", subscriptionHandler.VerifyPayment)

	// Webhooks authenticate by signature or shared token, never JWT.
	webhooks := api.Group("/webhooks")
	webhooks.Post("/clerk", webhookHandler.HandleClerk)
	webhooks.Post("/razorpay", webhookHandler.HandleRazorpay)
	webhooks.Post("/n8n", documentHandler.ProcessorCallback)
}
