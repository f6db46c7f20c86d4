package portfolios

import (
	"context"
	"errors"

	"folio-backend/internal/domain"
	"folio-backend/internal/marketdata"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrPortfolioNotFound is surfaced as a distinct condition so handlers can map
// it to a 404 rather than a generic failure.
var ErrPortfolioNotFound = errors.New("portfolio not found")

// ErrNoUpdatableFields is returned when an update request carries none of the
// editable portfolio fields.
var ErrNoUpdatableFields = errors.New("no valid fields to update")

type Service struct {
	DB     *gorm.DB
	Prices marketdata.Provider
}

// CreateInput carries the caller-editable portfolio fields.
type CreateInput struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	BaseCurrency string  `json:"base_currency"`
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*domain.Portfolio, error) {
	currency := in.BaseCurrency
	if currency == "" {
		currency = "USD"
	}
	p := domain.Portfolio{
		UserID:       userID,
		Name:         in.Name,
		Description:  in.Description,
		BaseCurrency: currency,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PortfolioListing is a portfolio with holdings aggregates for list views.
type PortfolioListing struct {
	domain.Portfolio
	HoldingsCount int             `json:"holdings_count"`
	TotalInvested decimal.Decimal `json:"total_invested"`
}

// ListByUser returns the user's portfolios oldest first, each with a holdings
// count and the cost basis sum of its open positions.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]PortfolioListing, error) {
	var portfolios []domain.Portfolio
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&portfolios).Error; err != nil {
		return nil, err
	}
	if len(portfolios) == 0 {
		return []PortfolioListing{}, nil
	}

	ids := make([]uuid.UUID, len(portfolios))
	for i, p := range portfolios {
		ids[i] = p.ID
	}
	var holdings []domain.Holding
	if err := s.DB.WithContext(ctx).Where("portfolio_id IN ?", ids).Find(&holdings).Error; err != nil {
		return nil, err
	}

	counts := map[uuid.UUID]int{}
	invested := map[uuid.UUID]decimal.Decimal{}
	for _, h := range holdings {
		counts[h.PortfolioID]++
		if h.Quantity.IsPositive() {
			invested[h.PortfolioID] = invested[h.PortfolioID].Add(h.TotalCostBasis)
		}
	}

	out := make([]PortfolioListing, len(portfolios))
	for i, p := range portfolios {
		out[i] = PortfolioListing{
			Portfolio:     p,
			HoldingsCount: counts[p.ID],
			TotalInvested: invested[p.ID],
		}
	}
	return out, nil
}

// Get returns the portfolio only if it belongs to userID.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateInput carries the fields editable after creation; nil means unchanged.
type UpdateInput struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	BaseCurrency *string `json:"base_currency"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*domain.Portfolio, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.BaseCurrency != nil {
		updates["base_currency"] = *in.BaseCurrency
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdatableFields
	}

	var p domain.Portfolio
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortfolioNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&p).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the portfolio and all dependent rows in one unit of work,
// ordered to satisfy referential constraints.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portfolio_id = ?", id).Delete(&domain.PortfolioSnapshot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&domain.DividendPayment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&domain.StockSplit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&domain.Holding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&domain.CashBalance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&domain.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Portfolio{}).Error
	})
}
