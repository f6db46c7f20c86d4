package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest price for one symbol from one data source.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Timestamp     time.Time       `json:"timestamp"`
	ChangePercent *float64        `json:"change_percent,omitempty"`
	Volume        *float64        `json:"volume,omitempty"`
	DataSource    string          `json:"data_source"`
}

// SearchResult is one asset match from a provider's search endpoint.
type SearchResult struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Exchange    string `json:"exchange"`
	Currency    string `json:"currency"`
	Type        string `json:"type"`
	Country     string `json:"country"`
	DataSource  string `json:"data_source"`
	CoinGeckoID string `json:"coingecko_id,omitempty"`
}

// Candle is one historical price point. Only Close is guaranteed for crypto
// sources.
type Candle struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Low    *float64 `json:"low,omitempty"`
	Close  float64  `json:"close"`
	Volume *float64 `json:"volume,omitempty"`
}

// Provider is the market data collaborator consumed by portfolio valuation.
type Provider interface {
	GetPrice(ctx context.Context, symbol, source, exchange string) (*Quote, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
	History(ctx context.Context, symbol, source, period, exchange string) ([]Candle, error)
}
