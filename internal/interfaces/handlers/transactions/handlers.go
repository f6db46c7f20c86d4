package transactions

import (
	"errors"
	"time"

	"folio-backend/internal/application/ledger"
	"folio-backend/internal/domain"
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *ledger.Service
}

// transactionBody is the wire shape for new transactions. Amounts accept JSON
// numbers or strings; decimal parses both.
type transactionBody struct {
	PortfolioID     string          `json:"portfolio_id"`
	AssetID         *string         `json:"asset_id"`
	PlatformID      *string         `json:"platform_id"`
	Kind            string          `json:"kind"`
	Quantity        decimal.Decimal `json:"quantity"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	FeeAmount       decimal.Decimal `json:"fee_amount"`
	TransactionDate *time.Time      `json:"transaction_date"`
	Notes           *string         `json:"notes"`
}

func (b *transactionBody) toInput(userID uuid.UUID) (ledger.TransactionInput, error) {
	in := ledger.TransactionInput{
		UserID:       userID,
		Kind:         domain.TransactionKind(b.Kind),
		Quantity:     b.Quantity,
		PricePerUnit: b.PricePerUnit,
		TotalAmount:  b.TotalAmount,
		Currency:     b.Currency,
		FeeAmount:    b.FeeAmount,
		Notes:        b.Notes,
	}
	portfolioID, err := uuid.Parse(b.PortfolioID)
	if err != nil {
		return in, errors.New("Invalid UUID format for portfolio_id")
	}
	in.PortfolioID = portfolioID
	if b.AssetID != nil && *b.AssetID != "" {
		assetID, err := uuid.Parse(*b.AssetID)
		if err != nil {
			return in, errors.New("Invalid UUID format for asset_id")
		}
		in.AssetID = &assetID
	}
	if b.PlatformID != nil && *b.PlatformID != "" {
		platformID, err := uuid.Parse(*b.PlatformID)
		if err != nil {
			return in, errors.New("Invalid UUID format for platform_id")
		}
		in.PlatformID = &platformID
	}
	if b.TransactionDate != nil {
		in.TransactionDate = *b.TransactionDate
	}
	return in, nil
}

func (h *Handlers) process(c *fiber.Ctx, body transactionBody) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if body.PortfolioID == "" {
		return response.Error(c, "Portfolio ID is required", 400, nil)
	}

	in, err := body.toInput(user.ID)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	tx, err := h.Service.ProcessTransaction(c.Context(), in)
	if err != nil {
		var validationErr *ledger.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return response.Error(c, validationErr.Error(), 400, nil)
		case errors.Is(err, ledger.ErrUnsupportedKind):
			return response.Error(c, err.Error(), 400, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}
	return response.SuccessCreated(c, "Transaction processed", tx, nil)
}

// Create POST /api/v1/transactions
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body transactionBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	return h.process(c, body)
}

// CreateCash POST /api/v1/transactions/cash — asset is forced off for pure
// cash events.
func (h *Handlers) CreateCash(c *fiber.Ctx) error {
	var body transactionBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	body.AssetID = nil
	return h.process(c, body)
}

// CreateAsset POST /api/v1/transactions/asset
func (h *Handlers) CreateAsset(c *fiber.Ctx) error {
	var body transactionBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.AssetID == nil || *body.AssetID == "" {
		return response.Error(c, "Asset ID is required for asset transactions", 400, nil)
	}
	return h.process(c, body)
}

// CreateBulk POST /api/v1/transactions/bulk — each entry is processed in its
// own unit of work; failures are reported per index and do not abort the rest.
func (h *Handlers) CreateBulk(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		Transactions []transactionBody `json:"transactions"`
	}
	if err := c.BodyParser(&body); err != nil || body.Transactions == nil {
		return response.Error(c, "Transactions array is required", 400, nil)
	}

	type bulkError struct {
		Index int    `json:"index"`
		Error string `json:"error"`
	}
	results := []interface{}{}
	bulkErrors := []bulkError{}
	for i, item := range body.Transactions {
		in, err := item.toInput(user.ID)
		if err == nil {
			var tx *domain.Transaction
			tx, err = h.Service.ProcessTransaction(c.Context(), in)
			if err == nil {
				results = append(results, tx)
				continue
			}
		}
		bulkErrors = append(bulkErrors, bulkError{Index: i, Error: err.Error()})
	}

	meta := fiber.Map{"processed": len(results), "failed": len(bulkErrors)}
	if len(bulkErrors) > 0 {
		meta["errors"] = bulkErrors
	}
	return response.Success(c, "Bulk transactions processed", results, meta)
}

// History GET /api/v1/transactions/portfolio/:portfolioId
func (h *Handlers) History(c *fiber.Ctx) error {
	portfolioID, err := uuid.Parse(c.Params("portfolioId"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for portfolio_id", 400, nil)
	}

	filters := ledger.HistoryFilters{
		Kind: domain.TransactionKind(c.Query("kind")),
	}
	if s := c.Query("asset_id"); s != "" {
		assetID, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid UUID format for asset_id", 400, nil)
		}
		filters.AssetID = &assetID
	}
	if s := c.Query("start_date"); s != "" {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			return response.Error(c, "Invalid start_date, expected YYYY-MM-DD", 400, nil)
		}
		filters.StartDate = &start
	}
	if s := c.Query("end_date"); s != "" {
		end, err := time.Parse("2006-01-02", s)
		if err != nil {
			return response.Error(c, "Invalid end_date, expected YYYY-MM-DD", 400, nil)
		}
		filters.EndDate = &end
	}

	history, err := h.Service.GetHistory(c.Context(), portfolioID, filters)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Transactions retrieved", history, nil)
}

// Update PUT /api/v1/transactions/:id — the ledger is append-only.
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for transaction id", 400, nil)
	}
	if err := h.Service.UpdateTransaction(c.Context(), id, ledger.TransactionInput{}); err != nil {
		return response.Error(c, err.Error(), fiber.StatusNotImplemented, nil)
	}
	return response.Success(c, "Transaction updated", nil, nil)
}

// Delete DELETE /api/v1/transactions/:id — the ledger is append-only.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for transaction id", 400, nil)
	}
	if err := h.Service.DeleteTransaction(c.Context(), id); err != nil {
		return response.Error(c, err.Error(), fiber.StatusNotImplemented, nil)
	}
	return response.Success(c, "Transaction deleted", nil, nil)
}
