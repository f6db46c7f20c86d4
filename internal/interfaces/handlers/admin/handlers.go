package admin

import (
	"folio-backend/internal/infrastructure/database"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handlers struct {
	DB *gorm.DB
}

// Bootstrap POST /api/v1/admin/bootstrap — runs schema migrations. Guarded by
// the admin key middleware.
func (h *Handlers) Bootstrap(c *fiber.Ctx) error {
	if err := database.AutoMigrate(h.DB); err != nil {
		return response.Error(c, "Migration failed", 500, nil)
	}
	return response.Success(c, "Database migrated", nil, nil)
}
