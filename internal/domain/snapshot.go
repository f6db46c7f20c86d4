package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PortfolioSnapshot captures portfolio totals once per calendar day. The
// (portfolio_id, snapshot_date) key makes same-day snapshots an overwrite.
type PortfolioSnapshot struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PortfolioID     uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;uniqueIndex:idx_snapshots_day" json:"portfolio_id"`
	SnapshotDate    datatypes.Date  `gorm:"column:snapshot_date;not null;uniqueIndex:idx_snapshots_day" json:"snapshot_date"`
	TotalValue      decimal.Decimal `gorm:"column:total_value;type:decimal(28,10);not null" json:"total_value"`
	TotalInvested   decimal.Decimal `gorm:"column:total_invested;type:decimal(28,10);not null" json:"total_invested"`
	TotalGainLoss   decimal.Decimal `gorm:"column:total_gain_loss;type:decimal(28,10);not null" json:"total_gain_loss"`
	PercentGainLoss decimal.Decimal `gorm:"column:percent_gain_loss;type:decimal(28,10);not null" json:"percent_gain_loss"`
	HoldingsCount   int             `gorm:"column:holdings_count;not null" json:"holdings_count"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (PortfolioSnapshot) TableName() string {
	return "portfolio_snapshots"
}

func (s *PortfolioSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
