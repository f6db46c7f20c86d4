package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"folio-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	defaultEODHDBaseURL     = "https://eodhd.com/api"
	defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
)

// Client fetches quotes from EODHD (stocks/ETFs) and CoinGecko (crypto).
type Client struct {
	HTTPClient       *http.Client
	EODHDAPIKey      string
	EODHDBaseURL     string
	CoinGeckoBaseURL string

	log zerolog.Logger
}

// NewClient builds a Client with sane defaults; empty base URLs fall back to
// the public APIs.
func NewClient(eodhdAPIKey, eodhdBaseURL, coingeckoBaseURL string) *Client {
	if eodhdBaseURL == "" {
		eodhdBaseURL = defaultEODHDBaseURL
	}
	if coingeckoBaseURL == "" {
		coingeckoBaseURL = defaultCoinGeckoBaseURL
	}
	return &Client{
		HTTPClient:       &http.Client{Timeout: 10 * time.Second},
		EODHDAPIKey:      eodhdAPIKey,
		EODHDBaseURL:     eodhdBaseURL,
		CoinGeckoBaseURL: coingeckoBaseURL,
		log:              log.With().Str("component", "marketdata").Logger(),
	}
}

// GetPrice fetches the latest price for symbol from the given data source.
func (c *Client) GetPrice(ctx context.Context, symbol, source, exchange string) (*Quote, error) {
	switch source {
	case domain.DataSourceEODHD:
		return c.eodhdPrice(ctx, symbol, exchange)
	case domain.DataSourceCoinGecko:
		return c.coingeckoPrice(ctx, symbol)
	default:
		return nil, fmt.Errorf("unsupported data source: %s", source)
	}
}

type eodhdRealTime struct {
	Close     json.Number `json:"close"`
	Price     json.Number `json:"price"`
	Timestamp int64       `json:"timestamp"`
	Change    float64     `json:"change"`
	ChangeP   float64     `json:"change_p"`
	Volume    float64     `json:"volume"`
}

func (c *Client) eodhdPrice(ctx context.Context, symbol, exchange string) (*Quote, error) {
	if exchange == "" {
		exchange = "US"
	}
	u := fmt.Sprintf("%s/real-time/%s.%s?api_token=%s&fmt=json",
		c.EODHDBaseURL, url.PathEscape(symbol), url.PathEscape(exchange), url.QueryEscape(c.EODHDAPIKey))

	var body eodhdRealTime
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}

	raw := body.Close.String()
	if raw == "" || raw == "NA" {
		raw = body.Price.String()
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("eodhd: no usable price for %s.%s", symbol, exchange)
	}

	changeP := body.ChangeP
	volume := body.Volume
	return &Quote{
		Symbol:        symbol,
		Price:         price,
		Currency:      "USD",
		Timestamp:     time.Unix(body.Timestamp, 0).UTC(),
		ChangePercent: &changeP,
		Volume:        &volume,
		DataSource:    domain.DataSourceEODHD,
	}, nil
}

type coingeckoSimplePrice struct {
	USD           float64 `json:"usd"`
	USD24hChange  float64 `json:"usd_24h_change"`
	USD24hVol     float64 `json:"usd_24h_vol"`
	LastUpdatedAt int64   `json:"last_updated_at"`
}

func (c *Client) coingeckoPrice(ctx context.Context, coinID string) (*Quote, error) {
	id := strings.ToLower(coinID)
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true&include_24hr_vol=true&include_last_updated_at=true",
		c.CoinGeckoBaseURL, url.QueryEscape(id))

	var body map[string]coingeckoSimplePrice
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	data, ok := body[id]
	if !ok {
		return nil, fmt.Errorf("coingecko: coin %s not found", coinID)
	}

	changeP := data.USD24hChange
	volume := data.USD24hVol
	return &Quote{
		Symbol:        strings.ToUpper(coinID),
		Price:         decimal.NewFromFloat(data.USD),
		Currency:      "USD",
		Timestamp:     time.Unix(data.LastUpdatedAt, 0).UTC(),
		ChangePercent: &changeP,
		Volume:        &volume,
		DataSource:    domain.DataSourceCoinGecko,
	}, nil
}

// Search queries both providers and merges results; one provider failing does
// not hide the other's matches.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	results := []SearchResult{}

	eodhd, err := c.eodhdSearch(ctx, query)
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("EODHD search failed")
	} else {
		results = append(results, eodhd...)
	}

	coins, err := c.coingeckoSearch(ctx, query)
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("CoinGecko search failed")
	} else {
		results = append(results, coins...)
	}

	return results, nil
}

type eodhdSearchItem struct {
	Code     string `json:"Code"`
	Name     string `json:"Name"`
	Exchange string `json:"Exchange"`
	Currency string `json:"Currency"`
	Type     string `json:"Type"`
	Country  string `json:"Country"`
}

func (c *Client) eodhdSearch(ctx context.Context, query string) ([]SearchResult, error) {
	u := fmt.Sprintf("%s/search/%s?api_token=%s&limit=20",
		c.EODHDBaseURL, url.PathEscape(query), url.QueryEscape(c.EODHDAPIKey))

	var items []eodhdSearchItem
	if err := c.getJSON(ctx, u, &items); err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(items))
	for _, item := range items {
		currency := item.Currency
		if currency == "" {
			currency = "USD"
		}
		assetType := strings.ToLower(item.Type)
		if assetType == "" {
			assetType = "stock"
		}
		out = append(out, SearchResult{
			Symbol:     item.Code,
			Name:       item.Name,
			Exchange:   item.Exchange,
			Currency:   currency,
			Type:       assetType,
			Country:    item.Country,
			DataSource: domain.DataSourceEODHD,
		})
	}
	return out, nil
}

type coingeckoSearchBody struct {
	Coins []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"coins"`
}

func (c *Client) coingeckoSearch(ctx context.Context, query string) ([]SearchResult, error) {
	u := fmt.Sprintf("%s/search?query=%s", c.CoinGeckoBaseURL, url.QueryEscape(query))

	var body coingeckoSearchBody
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}

	coins := body.Coins
	if len(coins) > 20 {
		coins = coins[:20]
	}
	out := make([]SearchResult, 0, len(coins))
	for _, coin := range coins {
		out = append(out, SearchResult{
			Symbol:      strings.ToUpper(coin.Symbol),
			Name:        coin.Name,
			Exchange:    "GLOBAL",
			Currency:    "USD",
			Type:        "crypto",
			Country:     "GLOBAL",
			DataSource:  domain.DataSourceCoinGecko,
			CoinGeckoID: coin.ID,
		})
	}
	return out, nil
}

// History returns historical prices for an asset over a period
// (1d/7d/1m/3m/1y).
func (c *Client) History(ctx context.Context, symbol, source, period, exchange string) ([]Candle, error) {
	switch source {
	case domain.DataSourceEODHD:
		return c.eodhdHistory(ctx, symbol, exchange, period)
	case domain.DataSourceCoinGecko:
		return c.coingeckoHistory(ctx, symbol, period)
	default:
		return nil, fmt.Errorf("unsupported data source: %s", source)
	}
}

type eodhdEOD struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (c *Client) eodhdHistory(ctx context.Context, symbol, exchange, period string) ([]Candle, error) {
	if exchange == "" {
		exchange = "US"
	}
	from := time.Now().AddDate(0, 0, -periodToDays(period)).Format("2006-01-02")
	u := fmt.Sprintf("%s/eod/%s.%s?api_token=%s&from=%s&fmt=json",
		c.EODHDBaseURL, url.PathEscape(symbol), url.PathEscape(exchange), url.QueryEscape(c.EODHDAPIKey), from)

	var items []eodhdEOD
	if err := c.getJSON(ctx, u, &items); err != nil {
		return nil, err
	}

	out := make([]Candle, 0, len(items))
	for _, item := range items {
		open, high, low, volume := item.Open, item.High, item.Low, item.Volume
		out = append(out, Candle{
			Date:   item.Date,
			Open:   &open,
			High:   &high,
			Low:    &low,
			Close:  item.Close,
			Volume: &volume,
		})
	}
	return out, nil
}

type coingeckoMarketChart struct {
	Prices [][2]float64 `json:"prices"`
}

func (c *Client) coingeckoHistory(ctx context.Context, coinID, period string) ([]Candle, error) {
	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		c.CoinGeckoBaseURL, url.PathEscape(strings.ToLower(coinID)), periodToDays(period))

	var body coingeckoMarketChart
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}

	out := make([]Candle, 0, len(body.Prices))
	for _, point := range body.Prices {
		ts := time.UnixMilli(int64(point[0])).UTC()
		out = append(out, Candle{
			Date:  ts.Format("2006-01-02"),
			Close: point[1],
		})
	}
	return out, nil
}

func periodToDays(period string) int {
	switch period {
	case "1d":
		return 1
	case "7d":
		return 7
	case "1m":
		return 30
	case "3m":
		return 90
	case "1y":
		return 365
	default:
		return 30
	}
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("market data request failed: %d %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
