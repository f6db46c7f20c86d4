package ledger

import (
	"context"
	"time"

	"folio-backend/internal/domain"

	"github.com/google/uuid"
)

const historyLimit = 100

// HistoryFilters narrows a portfolio's transaction history. Zero values mean
// no filtering on that dimension.
type HistoryFilters struct {
	AssetID   *uuid.UUID
	Kind      domain.TransactionKind
	StartDate *time.Time
	EndDate   *time.Time
}

// HistoryEntry is a transaction enriched with asset and platform names for
// display.
type HistoryEntry struct {
	domain.Transaction
	Symbol       *string `json:"symbol"`
	AssetName    *string `json:"asset_name"`
	PlatformName *string `json:"platform_name"`
}

// GetHistory returns the newest transactions for a portfolio, most recent
// first, capped at 100 rows.
func (s *Service) GetHistory(ctx context.Context, portfolioID uuid.UUID, filters HistoryFilters) ([]HistoryEntry, error) {
	q := s.DB.WithContext(ctx).Where("portfolio_id = ?", portfolioID)
	if filters.AssetID != nil {
		q = q.Where("asset_id = ?", *filters.AssetID)
	}
	if filters.Kind != "" {
		q = q.Where("kind = ?", filters.Kind)
	}
	if filters.StartDate != nil {
		q = q.Where("transaction_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		q = q.Where("transaction_date <= ?", *filters.EndDate)
	}

	var txs []domain.Transaction
	if err := q.Order("transaction_date DESC, created_at DESC").Limit(historyLimit).Find(&txs).Error; err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return []HistoryEntry{}, nil
	}

	assetIDs := map[uuid.UUID]bool{}
	platformIDs := map[uuid.UUID]bool{}
	for _, t := range txs {
		if t.AssetID != nil {
			assetIDs[*t.AssetID] = true
		}
		if t.PlatformID != nil {
			platformIDs[*t.PlatformID] = true
		}
	}

	assetMap := map[uuid.UUID]domain.Asset{}
	if len(assetIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(assetIDs))
		for id := range assetIDs {
			ids = append(ids, id)
		}
		var assets []domain.Asset
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&assets).Error; err != nil {
			return nil, err
		}
		for _, a := range assets {
			assetMap[a.ID] = a
		}
	}

	platformMap := map[uuid.UUID]domain.Platform{}
	if len(platformIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(platformIDs))
		for id := range platformIDs {
			ids = append(ids, id)
		}
		var platforms []domain.Platform
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&platforms).Error; err != nil {
			return nil, err
		}
		for _, p := range platforms {
			platformMap[p.ID] = p
		}
	}

	out := make([]HistoryEntry, len(txs))
	for i, t := range txs {
		entry := HistoryEntry{Transaction: t}
		if t.AssetID != nil {
			if a, ok := assetMap[*t.AssetID]; ok {
				symbol, name := a.Symbol, a.Name
				entry.Symbol = &symbol
				entry.AssetName = &name
			}
		}
		if t.PlatformID != nil {
			if p, ok := platformMap[*t.PlatformID]; ok {
				name := p.Name
				entry.PlatformName = &name
			}
		}
		out[i] = entry
	}
	return out, nil
}
