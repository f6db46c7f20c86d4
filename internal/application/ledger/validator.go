package ledger

import (
	"time"

	"folio-backend/internal/domain"
	"folio-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionInput is a proposed ledger event. User and platform are always
// caller-resolved; there is no defaulting.
type TransactionInput struct {
	UserID          uuid.UUID              `json:"user_id"`
	PortfolioID     uuid.UUID              `json:"portfolio_id"`
	AssetID         *uuid.UUID             `json:"asset_id"`
	PlatformID      *uuid.UUID             `json:"platform_id"`
	Kind            domain.TransactionKind `json:"kind"`
	Quantity        decimal.Decimal        `json:"quantity"`
	PricePerUnit    decimal.Decimal        `json:"price_per_unit"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	Currency        string                 `json:"currency"`
	FeeAmount       decimal.Decimal        `json:"fee_amount"`
	TransactionDate time.Time              `json:"transaction_date"`
	Notes           *string                `json:"notes"`
}

// validate checks structural validity of in. Pure; performs no I/O.
func validate(in TransactionInput) error {
	if in.UserID == uuid.Nil {
		return &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if in.PortfolioID == uuid.Nil {
		return &ValidationError{Field: "portfolio_id", Reason: "is required"}
	}
	if !in.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: "is not a recognized transaction kind"}
	}
	if in.Kind.RequiresAsset() && (in.AssetID == nil || *in.AssetID == uuid.Nil) {
		return &ValidationError{Field: "asset_id", Reason: "is required for asset transactions"}
	}
	// Every kind touches either a holding or a cash balance, and both are
	// keyed by platform.
	if in.PlatformID == nil || *in.PlatformID == uuid.Nil {
		return &ValidationError{Field: "platform_id", Reason: "is required"}
	}
	if !validation.IsValidCurrency(in.Currency) {
		return &ValidationError{Field: "currency", Reason: "must be a three-letter currency code"}
	}
	if in.FeeAmount.IsNegative() {
		return &ValidationError{Field: "fee_amount", Reason: "must not be negative"}
	}
	if in.TotalAmount.IsNegative() {
		return &ValidationError{Field: "total_amount", Reason: "must not be negative"}
	}

	switch in.Kind {
	case domain.KindBuy, domain.KindSell, domain.KindTransferIn, domain.KindTransferOut, domain.KindFree:
		if !in.Quantity.IsPositive() {
			return &ValidationError{Field: "quantity", Reason: "must be positive"}
		}
	case domain.KindSplit:
		if !in.Quantity.IsPositive() {
			return &ValidationError{Field: "quantity", Reason: "(split ratio) must be positive"}
		}
	case domain.KindDividend:
		if in.Quantity.IsNegative() {
			return &ValidationError{Field: "quantity", Reason: "must not be negative"}
		}
	}
	return nil
}
