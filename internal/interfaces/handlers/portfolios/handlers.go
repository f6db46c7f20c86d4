package portfolios

import (
	"errors"

	"folio-backend/internal/application/portfolios"
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"
	"folio-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *portfolios.Service
}

// parseOwned resolves the :id param and checks the portfolio belongs to the
// authenticated user before any read or mutation proceeds.
func (h *Handlers) parseOwned(c *fiber.Ctx) (uuid.UUID, error) {
	user := middleware.GetUser(c)
	if user == nil {
		return uuid.Nil, response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, response.Error(c, "Invalid UUID format for portfolio id", 400, nil)
	}
	if _, err := h.Service.Get(c.Context(), id, user.ID); err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			return uuid.Nil, response.Error(c, "Portfolio not found", 404, nil)
		}
		return uuid.Nil, response.Error(c, "Internal Server Error", 500, nil)
	}
	return id, nil
}

// Create POST /api/v1/portfolios
func (h *Handlers) Create(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body portfolios.CreateInput
	if err := c.BodyParser(&body); err != nil || body.Name == "" {
		return response.Error(c, "Portfolio name is required", 400, nil)
	}
	if body.BaseCurrency != "" && !validation.IsValidCurrency(body.BaseCurrency) {
		return response.Error(c, "Invalid base currency", 400, nil)
	}

	p, err := h.Service.Create(c.Context(), user.ID, body)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Portfolio created", p, nil)
}

// List GET /api/v1/portfolios
func (h *Handlers) List(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	listings, err := h.Service.ListByUser(c.Context(), user.ID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Portfolios retrieved", listings, fiber.Map{"count": len(listings)})
}

// Get GET /api/v1/portfolios/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for portfolio id", 400, nil)
	}

	p, err := h.Service.Get(c.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			return response.Error(c, "Portfolio not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Portfolio retrieved", p, nil)
}

// Summary GET /api/v1/portfolios/:id/summary
func (h *Handlers) Summary(c *fiber.Ctx) error {
	id, err := h.parseOwned(c)
	if err != nil {
		return err
	}

	summary, err := h.Service.GetSummary(c.Context(), id)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			return response.Error(c, "Portfolio not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Portfolio summary retrieved", summary, nil)
}

// Update PUT /api/v1/portfolios/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := h.parseOwned(c)
	if err != nil {
		return err
	}

	var body portfolios.UpdateInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if body.BaseCurrency != nil && !validation.IsValidCurrency(*body.BaseCurrency) {
		return response.Error(c, "Invalid base currency", 400, nil)
	}

	p, err := h.Service.Update(c.Context(), id, body)
	if err != nil {
		switch {
		case errors.Is(err, portfolios.ErrNoUpdatableFields):
			return response.Error(c, err.Error(), 400, nil)
		case errors.Is(err, portfolios.ErrPortfolioNotFound):
			return response.Error(c, "Portfolio not found", 404, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}
	return response.Success(c, "Portfolio updated", p, nil)
}

// Delete DELETE /api/v1/portfolios/:id — removes the portfolio and all its
// dependent rows.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := h.parseOwned(c)
	if err != nil {
		return err
	}

	if err := h.Service.Delete(c.Context(), id); err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Portfolio deleted", nil, nil)
}

// Performance GET /api/v1/portfolios/:id/performance?period=1m
func (h *Handlers) Performance(c *fiber.Ctx) error {
	id, err := h.parseOwned(c)
	if err != nil {
		return err
	}

	period := c.Query("period", "all")
	if !validation.IsValidPeriod(period) {
		return response.Error(c, "Invalid period, expected one of 1d, 7d, 1m, 3m, 1y, all", 400, nil)
	}

	snapshots, err := h.Service.GetPerformance(c.Context(), id, period)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Performance retrieved", snapshots, fiber.Map{"period": period, "count": len(snapshots)})
}

// Snapshot POST /api/v1/portfolios/:id/snapshot — recomputes and stores
// today's valuation; same-day repeats overwrite.
func (h *Handlers) Snapshot(c *fiber.Ctx) error {
	id, err := h.parseOwned(c)
	if err != nil {
		return err
	}

	snapshot, err := h.Service.CreateSnapshot(c.Context(), id)
	if err != nil {
		if errors.Is(err, portfolios.ErrPortfolioNotFound) {
			return response.Error(c, "Portfolio not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Snapshot created", snapshot, nil)
}
