package assets

import (
	"context"
	"errors"

	"folio-backend/internal/domain"
	"folio-backend/internal/marketdata"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrAssetNotFound distinguishes a missing asset from other store failures.
var ErrAssetNotFound = errors.New("asset not found")

type Service struct {
	DB     *gorm.DB
	Prices marketdata.Provider
}

// RegisterInput describes an asset to track. Symbol and name are required;
// source defaults to eodhd.
type RegisterInput struct {
	Symbol     string         `json:"symbol"`
	Name       string         `json:"name"`
	AssetType  string         `json:"asset_type"`
	DataSource string         `json:"data_source"`
	Exchange   string         `json:"exchange"`
	Currency   string         `json:"currency"`
	Metadata   datatypes.JSON `json:"metadata"`
}

// Register creates the asset if it is not already tracked; an existing
// (symbol, data_source) pair is returned unchanged.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Asset, error) {
	source := in.DataSource
	if source == "" {
		source = domain.DataSourceEODHD
	}
	assetType := in.AssetType
	if assetType == "" {
		assetType = "stock"
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	asset := domain.Asset{
		Symbol:     in.Symbol,
		Name:       in.Name,
		AssetType:  assetType,
		DataSource: source,
		Exchange:   in.Exchange,
		Currency:   currency,
		Metadata:   in.Metadata,
	}
	err := s.DB.WithContext(ctx).
		Where("symbol = ? AND data_source = ?", in.Symbol, source).
		FirstOrCreate(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	if err := s.DB.WithContext(ctx).Order("symbol ASC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// FindBySymbol returns the tracked asset for symbol (any data source).
func (s *Service) FindBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	var asset domain.Asset
	err := s.DB.WithContext(ctx).Where("symbol = ?", symbol).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// Search proxies the market data providers' search endpoints.
func (s *Service) Search(ctx context.Context, query string) ([]marketdata.SearchResult, error) {
	return s.Prices.Search(ctx, query)
}
