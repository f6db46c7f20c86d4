package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashBalance is the derived cash position per (portfolio, platform, currency).
// Withdrawals may drive the balance negative; no floor is enforced.
type CashBalance struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PortfolioID uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;uniqueIndex:idx_cash_key" json:"portfolio_id"`
	PlatformID  uuid.UUID       `gorm:"column:platform_id;type:uuid;not null;uniqueIndex:idx_cash_key" json:"platform_id"`
	Currency    string          `gorm:"column:currency;type:varchar(3);not null;uniqueIndex:idx_cash_key" json:"currency"`
	Balance     decimal.Decimal `gorm:"column:balance;type:decimal(28,10);not null" json:"balance"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (CashBalance) TableName() string {
	return "cash_balances"
}

func (b *CashBalance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
