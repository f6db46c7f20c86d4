package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Portfolio is a named container of holdings, cash balances and transactions
// owned by one user. Deleting a portfolio removes all dependent rows.
type Portfolio struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description  *string   `gorm:"column:description;type:text" json:"description"`
	BaseCurrency string    `gorm:"column:base_currency;type:varchar(3);not null;default:USD" json:"base_currency"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}

func (p *Portfolio) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
