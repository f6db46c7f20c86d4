package platforms

import (
	"context"

	"folio-backend/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Platform, error) {
	platformType := in.Type
	if platformType == "" {
		platformType = "broker"
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	p := domain.Platform{Name: in.Name, Type: platformType, Currency: currency}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Platform, error) {
	var platforms []domain.Platform
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&platforms).Error; err != nil {
		return nil, err
	}
	return platforms, nil
}
