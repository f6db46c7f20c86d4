package portfolios

import (
	"context"
	"time"

	"folio-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// CreateSnapshot computes the current summary and upserts today's snapshot
// row. Re-running on the same calendar day overwrites rather than duplicates.
func (s *Service) CreateSnapshot(ctx context.Context, portfolioID uuid.UUID) (*domain.PortfolioSnapshot, error) {
	summary, err := s.GetSummary(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	snapshot := domain.PortfolioSnapshot{
		PortfolioID:     portfolioID,
		SnapshotDate:    datatypes.Date(time.Now()),
		TotalValue:      summary.Summary.TotalPortfolioValue,
		TotalInvested:   summary.Summary.TotalInvested,
		TotalGainLoss:   summary.Summary.TotalGainLoss,
		PercentGainLoss: summary.Summary.TotalPercentGainLoss,
		HoldingsCount:   summary.Summary.HoldingsCount,
	}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "portfolio_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_value", "total_invested", "total_gain_loss", "percent_gain_loss", "holdings_count", "updated_at",
		}),
	}).Create(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetPerformance returns the portfolio's snapshots inside the period
// (1d/7d/1m/3m/1y/all), oldest first.
func (s *Service) GetPerformance(ctx context.Context, portfolioID uuid.UUID, period string) ([]domain.PortfolioSnapshot, error) {
	q := s.DB.WithContext(ctx).Where("portfolio_id = ?", portfolioID)

	now := time.Now()
	switch period {
	case "1d":
		q = q.Where("snapshot_date >= ?", datatypes.Date(now.AddDate(0, 0, -1)))
	case "7d":
		q = q.Where("snapshot_date >= ?", datatypes.Date(now.AddDate(0, 0, -7)))
	case "1m":
		q = q.Where("snapshot_date >= ?", datatypes.Date(now.AddDate(0, -1, 0)))
	case "3m":
		q = q.Where("snapshot_date >= ?", datatypes.Date(now.AddDate(0, -3, 0)))
	case "1y":
		q = q.Where("snapshot_date >= ?", datatypes.Date(now.AddDate(-1, 0, 0)))
	case "all", "":
	}

	var snapshots []domain.PortfolioSnapshot
	if err := q.Order("snapshot_date ASC").Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// ListIDs returns every portfolio ID; used by the snapshot scheduler.
func (s *Service) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.DB.WithContext(ctx).Model(&domain.Portfolio{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
