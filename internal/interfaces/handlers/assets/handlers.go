package assets

import (
	"errors"
	"strings"

	"folio-backend/internal/application/assets"
	"folio-backend/internal/domain"
	"folio-backend/internal/marketdata"
	"folio-backend/internal/pkg/response"
	"folio-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *assets.Service
	Prices  marketdata.Provider
}

// Register POST /api/v1/assets
func (h *Handlers) Register(c *fiber.Ctx) error {
	var body assets.RegisterInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if body.Symbol == "" || body.Name == "" {
		return response.Error(c, "Symbol and name are required", 400, nil)
	}
	if body.DataSource != "" && body.DataSource != domain.DataSourceEODHD && body.DataSource != domain.DataSourceCoinGecko {
		return response.Error(c, "Unsupported data source", 400, nil)
	}

	asset, err := h.Service.Register(c.Context(), body)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Asset registered", asset, nil)
}

// List GET /api/v1/assets
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Assets retrieved", list, fiber.Map{"count": len(list)})
}

// Search GET /api/v1/assets/search?q=apple
func (h *Handlers) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return response.Error(c, "Search query is required", 400, nil)
	}

	results, err := h.Service.Search(c.Context(), query)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Search results retrieved", results, fiber.Map{"count": len(results)})
}

// resolveSource picks the data source and exchange for a symbol: the tracked
// asset's own settings when registered, otherwise query params with an eodhd
// default.
func (h *Handlers) resolveSource(c *fiber.Ctx, symbol string) (source, exchange string) {
	if asset, err := h.Service.FindBySymbol(c.Context(), symbol); err == nil {
		return asset.DataSource, asset.Exchange
	}
	source = c.Query("data_source", domain.DataSourceEODHD)
	exchange = c.Query("exchange")
	return source, exchange
}

// Price GET /api/v1/assets/:symbol/price
func (h *Handlers) Price(c *fiber.Ctx) error {
	symbol := c.Params("symbol")
	source, exchange := h.resolveSource(c, symbol)
	if source == domain.DataSourceCoinGecko {
		symbol = strings.ToLower(symbol)
	}

	quote, err := h.Prices.GetPrice(c.Context(), symbol, source, exchange)
	if err != nil {
		return response.Error(c, "Price unavailable for "+symbol, fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Price retrieved", quote, nil)
}

// History GET /api/v1/assets/:symbol/history?period=1m
func (h *Handlers) History(c *fiber.Ctx) error {
	symbol := c.Params("symbol")
	period := c.Query("period", "1m")
	if !validation.IsValidPeriod(period) {
		return response.Error(c, "Invalid period, expected one of 1d, 7d, 1m, 3m, 1y, all", 400, nil)
	}

	source, exchange := h.resolveSource(c, symbol)
	if source == domain.DataSourceCoinGecko {
		symbol = strings.ToLower(symbol)
	}

	candles, err := h.Prices.History(c.Context(), symbol, source, period, exchange)
	if err != nil {
		return response.Error(c, "History unavailable for "+symbol, fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Price history retrieved", candles, fiber.Map{"period": period, "count": len(candles)})
}

// Get GET /api/v1/assets/:symbol
func (h *Handlers) Get(c *fiber.Ctx) error {
	asset, err := h.Service.FindBySymbol(c.Context(), c.Params("symbol"))
	if err != nil {
		if errors.Is(err, assets.ErrAssetNotFound) {
			return response.Error(c, "Asset not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Asset retrieved", asset, nil)
}
