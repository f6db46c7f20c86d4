package assets

import (
	"context"
	"testing"

	"folio-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAssetTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Asset{}))
	return &Service{DB: db}
}

func TestRegister_Defaults(t *testing.T) {
	svc := setupAssetTest(t)

	asset, err := svc.Register(context.Background(), RegisterInput{Symbol: "AAPL", Name: "Apple Inc"})
	require.NoError(t, err)
	assert.Equal(t, domain.DataSourceEODHD, asset.DataSource)
	assert.Equal(t, "stock", asset.AssetType)
	assert.Equal(t, "USD", asset.Currency)
}

func TestRegister_ExistingPairReturnedUnchanged(t *testing.T) {
	svc := setupAssetTest(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Symbol: "BTC", Name: "Bitcoin", DataSource: domain.DataSourceCoinGecko, AssetType: "crypto"})
	require.NoError(t, err)

	second, err := svc.Register(ctx, RegisterInput{Symbol: "BTC", Name: "Renamed", DataSource: domain.DataSourceCoinGecko})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Bitcoin", second.Name, "existing asset is not overwritten")

	// same symbol under another source is a distinct asset
	other, err := svc.Register(ctx, RegisterInput{Symbol: "BTC", Name: "Bitcoin ETF", DataSource: domain.DataSourceEODHD})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestFindBySymbol(t *testing.T) {
	svc := setupAssetTest(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Symbol: "AAPL", Name: "Apple Inc"})
	require.NoError(t, err)

	asset, err := svc.FindBySymbol(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", asset.Name)

	_, err = svc.FindBySymbol(ctx, "MISSING")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}
