package middleware

import (
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const adminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards operational routes (schema bootstrap) behind a
// bcrypt-hashed admin key. An empty configured hash disables the routes.
func RequireAdminKey(adminKeyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminKeyHash == "" {
			return response.Error(c, "Admin routes disabled", fiber.StatusForbidden, nil)
		}
		key := c.Get(adminKeyHeader)
		if key == "" {
			return response.Unauthorized(c, "Missing admin key")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(key)); err != nil {
			return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
