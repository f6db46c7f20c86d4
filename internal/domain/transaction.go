package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionKind is the closed set of ledger event types.
type TransactionKind string

const (
	KindBuy         TransactionKind = "buy"
	KindSell        TransactionKind = "sell"
	KindDeposit     TransactionKind = "deposit"
	KindWithdrawal  TransactionKind = "withdrawal"
	KindDividend    TransactionKind = "dividend"
	KindTransferIn  TransactionKind = "transfer_in"
	KindTransferOut TransactionKind = "transfer_out"
	KindSplit       TransactionKind = "split"
	KindFree        TransactionKind = "free"
)

// Valid reports whether k is a recognized transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindBuy, KindSell, KindDeposit, KindWithdrawal, KindDividend,
		KindTransferIn, KindTransferOut, KindSplit, KindFree:
		return true
	}
	return false
}

// RequiresAsset reports whether k needs an asset reference. Dividends also
// reference an asset for the payment record they write.
func (k TransactionKind) RequiresAsset() bool {
	switch k {
	case KindBuy, KindSell, KindDividend, KindTransferIn, KindTransferOut, KindSplit, KindFree:
		return true
	}
	return false
}

// Transaction is an immutable, append-only ledger event. Rows are created only
// through the ledger service; update and delete are not supported because they
// would require recomputing all downstream holdings and cash state.
type Transaction struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	PortfolioID     uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;index" json:"portfolio_id"`
	AssetID         *uuid.UUID      `gorm:"column:asset_id;type:uuid;index" json:"asset_id"`
	PlatformID      *uuid.UUID      `gorm:"column:platform_id;type:uuid" json:"platform_id"`
	Kind            TransactionKind `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:decimal(28,10);not null" json:"quantity"`
	PricePerUnit    decimal.Decimal `gorm:"column:price_per_unit;type:decimal(28,10);not null" json:"price_per_unit"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:decimal(28,10);not null" json:"total_amount"`
	Currency        string          `gorm:"column:currency;type:varchar(3);not null;default:USD" json:"currency"`
	FeeAmount       decimal.Decimal `gorm:"column:fee_amount;type:decimal(28,10);not null" json:"fee_amount"`
	TransactionDate time.Time       `gorm:"column:transaction_date;not null" json:"transaction_date"`
	Notes           *string         `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
