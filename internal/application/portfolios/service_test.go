package portfolios

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"folio-backend/internal/domain"
	"folio-backend/internal/marketdata"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func datatypesDate(t time.Time) datatypes.Date {
	return datatypes.Date(t)
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// fakeProvider serves canned quotes keyed by upper-cased symbol; symbols in
// failSymbols error instead.
type fakeProvider struct {
	prices      map[string]decimal.Decimal
	failSymbols map[string]bool
}

func (p *fakeProvider) GetPrice(ctx context.Context, symbol, source, exchange string) (*marketdata.Quote, error) {
	key := strings.ToUpper(symbol)
	if p.failSymbols[key] {
		return nil, fmt.Errorf("provider down for %s", symbol)
	}
	price, ok := p.prices[key]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return &marketdata.Quote{Symbol: symbol, Price: price, Currency: "USD", Timestamp: time.Now(), DataSource: source}, nil
}

func (p *fakeProvider) Search(ctx context.Context, query string) ([]marketdata.SearchResult, error) {
	return nil, nil
}

func (p *fakeProvider) History(ctx context.Context, symbol, source, period, exchange string) ([]marketdata.Candle, error) {
	return nil, nil
}

type portfolioFixture struct {
	svc        *Service
	db         *gorm.DB
	provider   *fakeProvider
	userID     uuid.UUID
	portfolio  uuid.UUID
	platformID uuid.UUID
}

func setupPortfolioTest(t *testing.T) *portfolioFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Platform{}, &domain.Asset{}, &domain.Portfolio{},
		&domain.Transaction{}, &domain.Holding{}, &domain.CashBalance{},
		&domain.DividendPayment{}, &domain.StockSplit{}, &domain.PortfolioSnapshot{},
	))

	user := domain.User{AuthUID: "test-uid", Email: "test@example.com"}
	require.NoError(t, db.Create(&user).Error)
	platform := domain.Platform{Name: "Broker"}
	require.NoError(t, db.Create(&platform).Error)
	portfolio := domain.Portfolio{UserID: user.ID, Name: "Main", BaseCurrency: "USD"}
	require.NoError(t, db.Create(&portfolio).Error)

	provider := &fakeProvider{prices: map[string]decimal.Decimal{}, failSymbols: map[string]bool{}}
	return &portfolioFixture{
		svc:        &Service{DB: db, Prices: provider},
		db:         db,
		provider:   provider,
		userID:     user.ID,
		portfolio:  portfolio.ID,
		platformID: platform.ID,
	}
}

func (f *portfolioFixture) addHolding(t *testing.T, symbol string, qty, totalCost string) domain.Asset {
	asset := domain.Asset{Symbol: symbol, Name: symbol + " Inc", DataSource: domain.DataSourceEODHD}
	require.NoError(t, f.db.Create(&asset).Error)
	quantity := d(qty)
	cost := d(totalCost)
	avg := decimal.Zero
	if !quantity.IsZero() {
		avg = cost.Div(quantity)
	}
	h := domain.Holding{
		PortfolioID: f.portfolio, AssetID: asset.ID, PlatformID: f.platformID,
		Quantity: quantity, TotalCostBasis: cost, AverageCostBasis: avg,
	}
	require.NoError(t, f.db.Create(&h).Error)
	return asset
}

func TestCreateAndListPortfolios(t *testing.T) {
	f := setupPortfolioTest(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.userID, CreateInput{Name: "Crypto"})
	require.NoError(t, err)
	assert.Equal(t, "USD", created.BaseCurrency, "currency defaults to USD")

	f.addHolding(t, "AAPL", "10", "1500")
	f.addHolding(t, "MSFT", "0", "0")

	listings, err := f.svc.ListByUser(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "Main", listings[0].Name, "oldest first")
	assert.Equal(t, 2, listings[0].HoldingsCount)
	// only open positions count toward invested capital
	assert.True(t, listings[0].TotalInvested.Equal(d("1500")))
	assert.Equal(t, 0, listings[1].HoldingsCount)
}

func TestGetPortfolio_OwnershipScoped(t *testing.T) {
	f := setupPortfolioTest(t)
	ctx := context.Background()

	got, err := f.svc.Get(ctx, f.portfolio, f.userID)
	require.NoError(t, err)
	assert.Equal(t, f.portfolio, got.ID)

	_, err = f.svc.Get(ctx, f.portfolio, uuid.New())
	assert.ErrorIs(t, err, ErrPortfolioNotFound)
}

func TestUpdatePortfolio(t *testing.T) {
	f := setupPortfolioTest(t)
	ctx := context.Background()

	name := "Renamed"
	updated, err := f.svc.Update(ctx, f.portfolio, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = f.svc.Update(ctx, f.portfolio, UpdateInput{})
	assert.ErrorIs(t, err, ErrNoUpdatableFields)

	_, err = f.svc.Update(ctx, uuid.New(), UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrPortfolioNotFound)
}

func TestGetSummary_Valuation(t *testing.T) {
	f := setupPortfolioTest(t)

	f.addHolding(t, "AAPL", "10", "1500")
	f.provider.prices["AAPL"] = d("200")
	cash := domain.CashBalance{PortfolioID: f.portfolio, PlatformID: f.platformID, Currency: "USD", Balance: d("500")}
	require.NoError(t, f.db.Create(&cash).Error)

	summary, err := f.svc.GetSummary(context.Background(), f.portfolio)
	require.NoError(t, err)
	require.Len(t, summary.Holdings, 1)

	h := summary.Holdings[0]
	assert.Equal(t, "AAPL", h.Symbol)
	assert.True(t, h.CurrentPrice.Equal(d("200")))
	assert.True(t, h.CurrentValue.Equal(d("2000")))
	assert.True(t, h.TotalGainLoss.Equal(d("500")))
	assert.True(t, h.PercentGainLoss.Equal(d("500").Div(d("1500")).Mul(d("100"))))
	require.NotNil(t, h.PriceTimestamp)

	assert.True(t, summary.Summary.TotalInvested.Equal(d("1500")))
	assert.True(t, summary.Summary.TotalCurrentValue.Equal(d("2000")))
	assert.True(t, summary.Summary.TotalCash.Equal(d("500")))
	assert.True(t, summary.Summary.TotalPortfolioValue.Equal(d("2500")))
	assert.Equal(t, 1, summary.Summary.HoldingsCount)
}

func TestGetSummary_PriceFailureDegrades(t *testing.T) {
	f := setupPortfolioTest(t)

	f.addHolding(t, "AAPL", "10", "1500")
	f.addHolding(t, "TSLA", "5", "1000")
	f.provider.prices["AAPL"] = d("200")
	f.provider.failSymbols["TSLA"] = true

	summary, err := f.svc.GetSummary(context.Background(), f.portfolio)
	require.NoError(t, err, "one failing symbol must not fail the summary")
	require.Len(t, summary.Holdings, 2)

	bySymbol := map[string]EnrichedHolding{}
	for _, h := range summary.Holdings {
		bySymbol[h.Symbol] = h
	}
	assert.Empty(t, bySymbol["AAPL"].PriceError)
	assert.NotEmpty(t, bySymbol["TSLA"].PriceError)
	assert.True(t, bySymbol["TSLA"].CurrentValue.IsZero(), "failed holding values at zero")
	// totals include only the priced holding
	assert.True(t, summary.Summary.TotalCurrentValue.Equal(d("2000")))
}

func TestGetSummary_ExcludesClosedPositions(t *testing.T) {
	f := setupPortfolioTest(t)

	f.addHolding(t, "AAPL", "0", "0")
	summary, err := f.svc.GetSummary(context.Background(), f.portfolio)
	require.NoError(t, err)
	assert.Empty(t, summary.Holdings)
	assert.Equal(t, 0, summary.Summary.HoldingsCount)
}

func TestGetSummary_NotFound(t *testing.T) {
	f := setupPortfolioTest(t)

	_, err := f.svc.GetSummary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPortfolioNotFound)
}

func TestCreateSnapshot_SameDayOverwrites(t *testing.T) {
	f := setupPortfolioTest(t)
	ctx := context.Background()

	f.addHolding(t, "AAPL", "10", "1500")
	f.provider.prices["AAPL"] = d("200")

	first, err := f.svc.CreateSnapshot(ctx, f.portfolio)
	require.NoError(t, err)
	assert.True(t, first.TotalValue.Equal(d("2000")))

	f.provider.prices["AAPL"] = d("210")
	_, err = f.svc.CreateSnapshot(ctx, f.portfolio)
	require.NoError(t, err)

	var snapshots []domain.PortfolioSnapshot
	require.NoError(t, f.db.Where("portfolio_id = ?", f.portfolio).Find(&snapshots).Error)
	require.Len(t, snapshots, 1, "same-day snapshot must overwrite, not duplicate")
	assert.True(t, snapshots[0].TotalValue.Equal(d("2100")), "total value = %s", snapshots[0].TotalValue)
}

func TestGetPerformance_PeriodFilter(t *testing.T) {
	f := setupPortfolioTest(t)
	ctx := context.Background()

	old := domain.PortfolioSnapshot{
		PortfolioID:  f.portfolio,
		SnapshotDate: datatypesDate(time.Now().AddDate(0, -6, 0)),
		TotalValue:   d("1000"),
	}
	recent := domain.PortfolioSnapshot{
		PortfolioID:  f.portfolio,
		SnapshotDate: datatypesDate(time.Now().AddDate(0, 0, -3)),
		TotalValue:   d("2000"),
	}
	require.NoError(t, f.db.Create(&old).Error)
	require.NoError(t, f.db.Create(&recent).Error)

	all, err := f.svc.GetPerformance(ctx, f.portfolio, "all")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].TotalValue.Equal(d("1000")), "oldest first")

	week, err := f.svc.GetPerformance(ctx, f.portfolio, "7d")
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.True(t, week[0].TotalValue.Equal(d("2000")))
}

func TestDeletePortfolio_CascadesDependents(t *testing.T) {
	f := setupPortfolioTest(t)
	ctx := context.Background()

	asset := f.addHolding(t, "AAPL", "10", "1500")
	require.NoError(t, f.db.Create(&domain.CashBalance{
		PortfolioID: f.portfolio, PlatformID: f.platformID, Currency: "USD", Balance: d("100"),
	}).Error)
	require.NoError(t, f.db.Create(&domain.Transaction{
		UserID: f.userID, PortfolioID: f.portfolio, AssetID: &asset.ID, PlatformID: &f.platformID,
		Kind: domain.KindBuy, Quantity: d("10"), PricePerUnit: d("150"), TotalAmount: d("1500"),
		Currency: "USD", TransactionDate: time.Now(),
	}).Error)
	require.NoError(t, f.db.Create(&domain.DividendPayment{
		PortfolioID: f.portfolio, AssetID: asset.ID, PaymentDate: time.Now(),
		AmountPerShare: d("1"), TotalAmount: d("10"), Currency: "USD",
	}).Error)
	require.NoError(t, f.db.Create(&domain.StockSplit{
		PortfolioID: f.portfolio, AssetID: asset.ID, SplitDate: time.Now(), Ratio: d("2"),
	}).Error)
	require.NoError(t, f.db.Create(&domain.PortfolioSnapshot{
		PortfolioID: f.portfolio, SnapshotDate: datatypesDate(time.Now()),
	}).Error)

	require.NoError(t, f.svc.Delete(ctx, f.portfolio))

	for _, model := range []interface{}{
		&domain.Portfolio{}, &domain.Holding{}, &domain.CashBalance{},
		&domain.Transaction{}, &domain.DividendPayment{}, &domain.StockSplit{},
		&domain.PortfolioSnapshot{},
	} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows must be gone", model)
	}

	// the tracked asset itself survives
	var assetCount int64
	require.NoError(t, f.db.Model(&domain.Asset{}).Count(&assetCount).Error)
	assert.EqualValues(t, 1, assetCount)
}
