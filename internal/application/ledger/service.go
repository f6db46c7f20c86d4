package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"folio-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ProcessTransaction validates in, then inside one database transaction
// inserts the immutable ledger row and applies its effect to the derived
// holdings and cash balances. Any failure rolls the whole unit of work back;
// no partial holding or cash mutation survives a failed insert or vice versa.
func (s *Service) ProcessTransaction(ctx context.Context, in TransactionInput) (*domain.Transaction, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	txDate := in.TransactionDate
	if txDate.IsZero() {
		txDate = time.Now()
	}

	record := domain.Transaction{
		UserID:          in.UserID,
		PortfolioID:     in.PortfolioID,
		AssetID:         in.AssetID,
		PlatformID:      in.PlatformID,
		Kind:            in.Kind,
		Quantity:        in.Quantity,
		PricePerUnit:    in.PricePerUnit,
		TotalAmount:     in.TotalAmount,
		Currency:        in.Currency,
		FeeAmount:       in.FeeAmount,
		TransactionDate: txDate,
		Notes:           in.Notes,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return s.applyEffect(tx, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// applyEffect dispatches on kind to exactly one effect rule. Runs inside the
// unit of work opened by ProcessTransaction.
func (s *Service) applyEffect(tx *gorm.DB, t *domain.Transaction) error {
	switch t.Kind {
	case domain.KindBuy:
		return s.applyBuy(tx, t)
	case domain.KindSell:
		return s.applySell(tx, t)
	case domain.KindDeposit:
		return s.applyCashDelta(tx, t.PortfolioID, *t.PlatformID, t.Currency, t.TotalAmount)
	case domain.KindWithdrawal:
		return s.applyCashDelta(tx, t.PortfolioID, *t.PlatformID, t.Currency, t.TotalAmount.Add(t.FeeAmount).Neg())
	case domain.KindDividend:
		return s.applyDividend(tx, t)
	case domain.KindTransferIn:
		return s.applyHoldingsDelta(tx, t.PortfolioID, *t.AssetID, *t.PlatformID, t.Quantity, t.TotalAmount)
	case domain.KindTransferOut:
		return s.applyHoldingsDelta(tx, t.PortfolioID, *t.AssetID, *t.PlatformID, t.Quantity.Neg(), t.TotalAmount.Neg())
	case domain.KindSplit:
		return s.applySplit(tx, t)
	case domain.KindFree:
		return s.applyHoldingsDelta(tx, t.PortfolioID, *t.AssetID, *t.PlatformID, t.Quantity, decimal.Zero)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, t.Kind)
	}
}

// applyBuy increases the holding by quantity and (total + fee) cost, and
// decreases cash by the same gross amount.
func (s *Service) applyBuy(tx *gorm.DB, t *domain.Transaction) error {
	gross := t.TotalAmount.Add(t.FeeAmount)
	if err := s.applyHoldingsDelta(tx, t.PortfolioID, *t.AssetID, *t.PlatformID, t.Quantity, gross); err != nil {
		return err
	}
	return s.applyCashDelta(tx, t.PortfolioID, *t.PlatformID, t.Currency, gross.Neg())
}

// applySell decreases the holding and credits cash net of fees. The cost
// reduction is quantity x the sale's own price, an average-cost approximation
// carried over from the original design rather than a proportional reduction
// by the current average cost basis.
func (s *Service) applySell(tx *gorm.DB, t *domain.Transaction) error {
	costReduction := t.Quantity.Mul(t.PricePerUnit)
	if err := s.applyHoldingsDelta(tx, t.PortfolioID, *t.AssetID, *t.PlatformID, t.Quantity.Neg(), costReduction.Neg()); err != nil {
		return err
	}
	return s.applyCashDelta(tx, t.PortfolioID, *t.PlatformID, t.Currency, t.TotalAmount.Sub(t.FeeAmount))
}

// applyDividend records the payment, then either reinvests it into the
// holding (quantity > 0, DRIP) or credits cash.
func (s *Service) applyDividend(tx *gorm.DB, t *domain.Transaction) error {
	payment := domain.DividendPayment{
		PortfolioID:    t.PortfolioID,
		AssetID:        *t.AssetID,
		PaymentDate:    t.TransactionDate,
		AmountPerShare: t.PricePerUnit,
		TotalAmount:    t.TotalAmount,
		Currency:       t.Currency,
		IsReinvested:   t.Quantity.IsPositive(),
	}
	if err := tx.Create(&payment).Error; err != nil {
		return err
	}
	if t.Quantity.IsPositive() {
		return s.applyHoldingsDelta(tx, t.PortfolioID, *t.AssetID, *t.PlatformID, t.Quantity, t.TotalAmount)
	}
	return s.applyCashDelta(tx, t.PortfolioID, *t.PlatformID, t.Currency, t.TotalAmount)
}

// applySplit records the split and rewrites every holding of the asset in the
// portfolio: quantity x ratio, average cost / ratio. Total cost basis is
// unchanged. The ratio travels in the transaction's quantity field.
func (s *Service) applySplit(tx *gorm.DB, t *domain.Transaction) error {
	ratio := t.Quantity
	split := domain.StockSplit{
		PortfolioID: t.PortfolioID,
		AssetID:     *t.AssetID,
		SplitDate:   t.TransactionDate,
		Ratio:       ratio,
	}
	if err := tx.Create(&split).Error; err != nil {
		return err
	}

	var holdings []domain.Holding
	if err := tx.Where("portfolio_id = ? AND asset_id = ?", t.PortfolioID, *t.AssetID).Find(&holdings).Error; err != nil {
		return err
	}
	for i := range holdings {
		holdings[i].Quantity = holdings[i].Quantity.Mul(ratio)
		holdings[i].AverageCostBasis = holdings[i].AverageCostBasis.Div(ratio)
		if err := tx.Save(&holdings[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyHoldingsDelta upserts the unique (portfolio, asset, platform) holding:
// quantity and cost basis are adjusted by the signed deltas and the average is
// recomputed from the new totals, 0 when the resulting quantity is exactly 0.
// No lower bound is enforced on quantity; an oversell produces a negative
// holding. Serialization across concurrent writers is left to the store's
// row-level locking inside the surrounding unit of work.
func (s *Service) applyHoldingsDelta(tx *gorm.DB, portfolioID, assetID, platformID uuid.UUID, deltaQty, deltaCost decimal.Decimal) error {
	var holding domain.Holding
	err := tx.Where("portfolio_id = ? AND asset_id = ? AND platform_id = ?", portfolioID, assetID, platformID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		holding = domain.Holding{
			PortfolioID:      portfolioID,
			AssetID:          assetID,
			PlatformID:       platformID,
			Quantity:         deltaQty,
			TotalCostBasis:   deltaCost,
			AverageCostBasis: averageCost(deltaCost, deltaQty),
		}
		return tx.Create(&holding).Error
	}
	if err != nil {
		return err
	}

	holding.Quantity = holding.Quantity.Add(deltaQty)
	holding.TotalCostBasis = holding.TotalCostBasis.Add(deltaCost)
	holding.AverageCostBasis = averageCost(holding.TotalCostBasis, holding.Quantity)
	return tx.Save(&holding).Error
}

// applyCashDelta upserts the unique (portfolio, platform, currency) balance.
// No non-negativity check; withdrawals may drive the balance negative.
func (s *Service) applyCashDelta(tx *gorm.DB, portfolioID, platformID uuid.UUID, currency string, delta decimal.Decimal) error {
	var balance domain.CashBalance
	err := tx.Where("portfolio_id = ? AND platform_id = ? AND currency = ?", portfolioID, platformID, currency).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = domain.CashBalance{
			PortfolioID: portfolioID,
			PlatformID:  platformID,
			Currency:    currency,
			Balance:     delta,
		}
		return tx.Create(&balance).Error
	}
	if err != nil {
		return err
	}

	balance.Balance = balance.Balance.Add(delta)
	return tx.Save(&balance).Error
}

func averageCost(totalCost, quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return totalCost.Div(quantity)
}

// UpdateTransaction is intentionally unsupported; see ErrUnsupportedOperation.
func (s *Service) UpdateTransaction(ctx context.Context, id uuid.UUID, in TransactionInput) error {
	return ErrUnsupportedOperation
}

// DeleteTransaction is intentionally unsupported; see ErrUnsupportedOperation.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return ErrUnsupportedOperation
}
