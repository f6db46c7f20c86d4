package platforms

import (
	"folio-backend/internal/application/platforms"
	"folio-backend/internal/pkg/response"
	"folio-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *platforms.Service
}

// Create POST /api/v1/platforms
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body platforms.CreateInput
	if err := c.BodyParser(&body); err != nil || body.Name == "" {
		return response.Error(c, "Platform name is required", 400, nil)
	}
	if body.Currency != "" && !validation.IsValidCurrency(body.Currency) {
		return response.Error(c, "Invalid currency", 400, nil)
	}

	platform, err := h.Service.Create(c.Context(), body)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Platform created", platform, nil)
}

// List GET /api/v1/platforms
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Platforms retrieved", list, fiber.Map{"count": len(list)})
}
