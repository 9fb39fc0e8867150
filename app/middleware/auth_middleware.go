// Package middleware provides HTTP middleware components for authentication and request processing
package middleware

import (
	"crypto/subtle"

	"github.com/AiiMS-Group/landbot/app/dto"
	"github.com/gofiber/fiber/v3"
)

// APIKeyAuth guards the webhook endpoints with a shared static key carried
// in the X-API-Key header. The chat platform is configured with the same
// key; there are no per-user identities on this surface.
func APIKeyAuth(apiKey string) fiber.Handler {
	return func(c fiber.Ctx) error {
		provided := c.Get("X-API-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid or missing API key",
				Error: dto.ErrorDetail{
					Code: "UNAUTHORIZED",
				},
			})
		}
		return c.Next()
	}
}
