package ratelimit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/dto"
)

// Middleware guards one endpoint. Windows are keyed endpoint:identifier,
// preferring the authenticated user id and falling back to the client IP.
func (l *Limiter) Middleware(endpoint string, cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.IP()
		if token, ok := c.Locals("user").(*jwt.Token); ok {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok && sub != "" {
					identifier = sub
				}
			}
		}

		res := l.Check(endpoint+":"+identifier, cfg)

		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))

		if !res.Allowed {
			c.Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many requests, slow down",
			})
		}
		return c.Next()
	}
}
