package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DividendPayment is written as a side effect of every dividend transaction.
// IsReinvested marks DRIP events (dividend paid in shares, not cash).
type DividendPayment struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PortfolioID    uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;index" json:"portfolio_id"`
	AssetID        uuid.UUID       `gorm:"column:asset_id;type:uuid;not null" json:"asset_id"`
	PaymentDate    time.Time       `gorm:"column:payment_date;not null" json:"payment_date"`
	AmountPerShare decimal.Decimal `gorm:"column:amount_per_share;type:decimal(28,10);not null" json:"amount_per_share"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:decimal(28,10);not null" json:"total_amount"`
	Currency       string          `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	IsReinvested   bool            `gorm:"column:is_reinvested;not null" json:"is_reinvested"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (DividendPayment) TableName() string {
	return "dividend_payments"
}

func (d *DividendPayment) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
