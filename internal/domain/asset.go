package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Price data sources an Asset can be quoted from.
const (
	DataSourceEODHD     = "eodhd"
	DataSourceCoinGecko = "coingecko"
)

// Asset is a tradable instrument (stock, ETF, crypto coin).
type Asset struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Symbol     string         `gorm:"column:symbol;type:varchar(32);not null;uniqueIndex:idx_assets_symbol_source" json:"symbol"`
	Name       string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	AssetType  string         `gorm:"column:asset_type;type:varchar(50);not null;default:stock" json:"asset_type"`
	DataSource string         `gorm:"column:data_source;type:varchar(50);not null;default:eodhd;uniqueIndex:idx_assets_symbol_source" json:"data_source"`
	Exchange   string         `gorm:"column:exchange;type:varchar(32)" json:"exchange"`
	Currency   string         `gorm:"column:currency;type:varchar(3);not null;default:USD" json:"currency"`
	Metadata   datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Asset) TableName() string {
	return "assets"
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
