package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockSplit is written as a side effect of every split transaction. The
// associated holdings are rewritten in the same unit of work: quantity
// multiplied by Ratio, average cost divided by Ratio, total cost unchanged.
type StockSplit struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PortfolioID uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;index" json:"portfolio_id"`
	AssetID     uuid.UUID       `gorm:"column:asset_id;type:uuid;not null" json:"asset_id"`
	SplitDate   time.Time       `gorm:"column:split_date;not null" json:"split_date"`
	Ratio       decimal.Decimal `gorm:"column:ratio;type:decimal(28,10);not null" json:"ratio"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (StockSplit) TableName() string {
	return "stock_splits"
}

func (s *StockSplit) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
