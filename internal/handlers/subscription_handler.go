package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/dto"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/middleware"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/models"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/services"
)

type SubscriptionHandler struct {
	subscriptions *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptions *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Plans handles GET /api/plans (public pricing table for the UI).
func (h *SubscriptionHandler) Plans(c *fiber.Ctx) error {
	plans := make([]dto.PlanResponse, 0, len(services.Plans))
	for _, id := range []string{models.PlanPro, models.PlanPremium} {
		p := services.Plans[id]
		plans = append(plans, dto.PlanResponse{
			ID:       p.ID,
			Name:     p.Name,
			Amount:   p.Amount,
			Currency: p.Currency,
		})
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// CreateOrder handles POST /api/subscription/create-order.
func (h *SubscriptionHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	order, err := h.subscriptions.CreateOrder(userID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPlan):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid plan: must be pro or premium",
			})
		case errors.Is(err, services.ErrProviderNotConfigured):
			slog.Error("order creation without provider credentials", "user_id", userID)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment provider is not configured",
			})
		default:
			// The provider detail stays in the body for operator debugging.
			slog.Error("order creation failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}
	return c.JSON(order)
}

// Status handles GET /api/subscription/status.
func (h *SubscriptionHandler) Status(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	sub, err := h.subscriptions.GetByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch subscription",
		})
	}

	resp := dto.SubscriptionStatusResponse{
		Plan:   sub.Plan,
		Status: sub.Status,
	}
	if sub.StartDate != nil {
		resp.StartDate = sub.StartDate.Format(time.RFC3339)
	}
	if sub.EndDate != nil {
		resp.EndDate = sub.EndDate.Format(time.RFC3339)
	}
	return c.JSON(resp)
}

// VerifyPayment handles POST /api/subscription/verify-payment, the
// client-reported checkout result. Activation still hinges on server-side
// signature verification.
func (h *SubscriptionHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "razorpay_order_id, razorpay_payment_id and razorpay_signature are required",
		})
	}

	if err := h.subscriptions.VerifyPayment(userID, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrBadPaymentSignature):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment signature verification failed",
			})
		case errors.Is(err, services.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No subscription matches this order",
			})
		case errors.Is(err, services.ErrProviderNotConfigured):
			slog.Error("payment verification without provider credentials", "user_id", userID)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment provider is not configured",
			})
		default:
			slog.Error("payment verification failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to verify payment",
			})
		}
	}

	return c.JSON(dto.SuccessResponse{
		Success: true,
		Message: "Payment verified, subscription activated",
	})
}
