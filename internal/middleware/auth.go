package middleware

import (
	"strings"

	"folio-backend/internal/auth"
	"folio-backend/internal/domain"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userLocal = "user"

// RequireAuth verifies the Bearer token with the external identity provider
// and attaches the matching local user row (created on first sight) to the
// request. Every write entry point runs behind this; handlers never default
// the user.
func RequireAuth(verifier auth.TokenVerifier, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return response.Unauthorized(c, "Missing or malformed authorization header")
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			return response.Unauthorized(c, "Missing or malformed authorization header")
		}

		identity, err := verifier.Verify(c.Context(), token)
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}

		user := domain.User{
			AuthUID:     identity.UID,
			Email:       identity.Email,
			DisplayName: identity.Name,
		}
		if err := db.WithContext(c.Context()).
			Where("auth_uid = ?", identity.UID).
			FirstOrCreate(&user).Error; err != nil {
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}

		c.Locals(userLocal, &user)
		return c.Next()
	}
}

// GetUser returns the authenticated user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(userLocal).(*domain.User)
	return u
}
