package portfolios

import (
	"context"
	"errors"
	"strings"
	"time"

	"folio-backend/internal/domain"
	"folio-backend/internal/marketdata"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

// EnrichedHolding is a holding joined with asset metadata and live valuation.
// PriceError carries a per-asset lookup failure inline; the holding then
// values at zero instead of failing the whole summary.
type EnrichedHolding struct {
	domain.Holding
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	AssetType       string          `json:"asset_type"`
	DataSource      string          `json:"data_source"`
	Exchange        string          `json:"exchange"`
	AssetCurrency   string          `json:"asset_currency"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	TotalGainLoss   decimal.Decimal `json:"total_gain_loss"`
	PercentGainLoss decimal.Decimal `json:"percent_gain_loss"`
	PriceTimestamp  *time.Time      `json:"price_timestamp"`
	PriceError      string          `json:"price_error,omitempty"`
}

// SummaryTotals aggregates the whole portfolio.
type SummaryTotals struct {
	TotalInvested        decimal.Decimal `json:"total_invested"`
	TotalCurrentValue    decimal.Decimal `json:"total_current_value"`
	TotalCash            decimal.Decimal `json:"total_cash"`
	TotalPortfolioValue  decimal.Decimal `json:"total_portfolio_value"`
	TotalGainLoss        decimal.Decimal `json:"total_gain_loss"`
	TotalPercentGainLoss decimal.Decimal `json:"total_percent_gain_loss"`
	HoldingsCount        int             `json:"holdings_count"`
}

// Summary is the composed read-path view of a portfolio.
type Summary struct {
	domain.Portfolio
	Holdings     []EnrichedHolding    `json:"holdings"`
	CashBalances []domain.CashBalance `json:"cash_balances"`
	Summary      SummaryTotals        `json:"summary"`
}

// GetSummary joins open holdings with live prices and cash balances. The
// write path is untouched; per-asset price failures degrade that asset only.
func (s *Service) GetSummary(ctx context.Context, portfolioID uuid.UUID) (*Summary, error) {
	var portfolio domain.Portfolio
	if err := s.DB.WithContext(ctx).Where("id = ?", portfolioID).First(&portfolio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortfolioNotFound
		}
		return nil, err
	}

	var holdings []domain.Holding
	if err := s.DB.WithContext(ctx).
		Where("portfolio_id = ? AND quantity <> 0", portfolioID).
		Order("total_cost_basis DESC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}

	assetMap := map[uuid.UUID]domain.Asset{}
	if len(holdings) > 0 {
		ids := make([]uuid.UUID, 0, len(holdings))
		for _, h := range holdings {
			ids = append(ids, h.AssetID)
		}
		var assets []domain.Asset
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&assets).Error; err != nil {
			return nil, err
		}
		for _, a := range assets {
			assetMap[a.ID] = a
		}
	}

	// One bulk fetch per distinct (symbol, source, exchange); CoinGecko wants
	// lowercase coin IDs.
	type priceKey struct{ symbol, source, exchange string }
	seen := map[priceKey]bool{}
	reqs := []marketdata.PriceRequest{}
	for _, h := range holdings {
		a, ok := assetMap[h.AssetID]
		if !ok {
			continue
		}
		symbol := a.Symbol
		if a.DataSource == domain.DataSourceCoinGecko {
			symbol = strings.ToLower(symbol)
		}
		k := priceKey{symbol, a.DataSource, a.Exchange}
		if seen[k] {
			continue
		}
		seen[k] = true
		reqs = append(reqs, marketdata.PriceRequest{Symbol: symbol, Source: a.DataSource, Exchange: a.Exchange})
	}

	quotes := map[string]*marketdata.Quote{}
	priceErrs := map[string]string{}
	if len(reqs) > 0 && s.Prices != nil {
		for _, result := range marketdata.BulkPrices(ctx, s.Prices, reqs) {
			key := strings.ToUpper(result.Symbol)
			if result.Err != "" {
				priceErrs[key] = result.Err
				continue
			}
			quotes[key] = result.Quote
		}
	}

	enriched := make([]EnrichedHolding, 0, len(holdings))
	totalInvested := decimal.Zero
	totalCurrentValue := decimal.Zero
	for _, h := range holdings {
		e := EnrichedHolding{Holding: h}
		if a, ok := assetMap[h.AssetID]; ok {
			e.Symbol = a.Symbol
			e.Name = a.Name
			e.AssetType = a.AssetType
			e.DataSource = a.DataSource
			e.Exchange = a.Exchange
			e.AssetCurrency = a.Currency
		}

		key := strings.ToUpper(e.Symbol)
		if quote, ok := quotes[key]; ok {
			e.CurrentPrice = quote.Price
			e.CurrentValue = h.Quantity.Mul(quote.Price)
			ts := quote.Timestamp
			e.PriceTimestamp = &ts
		} else {
			e.PriceError = priceErrs[key]
		}

		e.TotalGainLoss = e.CurrentValue.Sub(h.TotalCostBasis)
		if h.TotalCostBasis.IsPositive() {
			e.PercentGainLoss = e.TotalGainLoss.Div(h.TotalCostBasis).Mul(oneHundred)
		}

		totalInvested = totalInvested.Add(h.TotalCostBasis)
		totalCurrentValue = totalCurrentValue.Add(e.CurrentValue)
		enriched = append(enriched, e)
	}

	var cashBalances []domain.CashBalance
	if err := s.DB.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("currency ASC").
		Find(&cashBalances).Error; err != nil {
		return nil, err
	}
	totalCash := decimal.Zero
	for _, b := range cashBalances {
		totalCash = totalCash.Add(b.Balance)
	}

	totalGainLoss := totalCurrentValue.Sub(totalInvested)
	totalPercent := decimal.Zero
	if totalInvested.IsPositive() {
		totalPercent = totalGainLoss.Div(totalInvested).Mul(oneHundred)
	}

	return &Summary{
		Portfolio:    portfolio,
		Holdings:     enriched,
		CashBalances: cashBalances,
		Summary: SummaryTotals{
			TotalInvested:        totalInvested,
			TotalCurrentValue:    totalCurrentValue,
			TotalCash:            totalCash,
			TotalPortfolioValue:  totalCurrentValue.Add(totalCash),
			TotalGainLoss:        totalGainLoss,
			TotalPercentGainLoss: totalPercent,
			HoldingsCount:        len(holdings),
		},
	}, nil
}
