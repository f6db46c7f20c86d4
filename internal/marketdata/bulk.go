package marketdata

import (
	"context"
	"sync"
)

// PriceRequest identifies one asset for a bulk fetch.
type PriceRequest struct {
	Symbol   string
	Source   string
	Exchange string
}

// PriceResult is either a Quote or an inline error for one request. A bulk
// call as a whole never fails.
type PriceResult struct {
	Symbol     string `json:"symbol"`
	DataSource string `json:"data_source"`
	Quote      *Quote `json:"quote,omitempty"`
	Err        string `json:"error,omitempty"`
}

// BulkPrices fetches all requested prices in parallel. One slow or failing
// lookup neither blocks nor fails the others; results keep request order.
func BulkPrices(ctx context.Context, p Provider, reqs []PriceRequest) []PriceResult {
	results := make([]PriceResult, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req PriceRequest) {
			defer wg.Done()
			result := PriceResult{Symbol: req.Symbol, DataSource: req.Source}
			quote, err := p.GetPrice(ctx, req.Symbol, req.Source, req.Exchange)
			if err != nil {
				result.Err = err.Error()
			} else {
				result.Quote = quote
			}
			results[i] = result
		}(i, req)
	}
	wg.Wait()

	return results
}
