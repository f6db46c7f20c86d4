package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is the derived position for one asset in one portfolio on one
// platform. At most one row exists per (portfolio, asset, platform); it is
// mutated only inside the ledger's unit of work. Quantity may go negative when
// sells exceed recorded buys; AverageCostBasis is 0 whenever Quantity is 0.
type Holding struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PortfolioID      uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;uniqueIndex:idx_holdings_key" json:"portfolio_id"`
	AssetID          uuid.UUID       `gorm:"column:asset_id;type:uuid;not null;uniqueIndex:idx_holdings_key" json:"asset_id"`
	PlatformID       uuid.UUID       `gorm:"column:platform_id;type:uuid;not null;uniqueIndex:idx_holdings_key" json:"platform_id"`
	Quantity         decimal.Decimal `gorm:"column:quantity;type:decimal(28,10);not null" json:"quantity"`
	TotalCostBasis   decimal.Decimal `gorm:"column:total_cost_basis;type:decimal(28,10);not null" json:"total_cost_basis"`
	AverageCostBasis decimal.Decimal `gorm:"column:average_cost_basis;type:decimal(28,10);not null" json:"average_cost_basis"`
	CreatedAt        time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
