package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform is a venue holding assets or cash (broker, exchange, bank).
type Platform struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Type      string    `gorm:"column:type;type:varchar(50);not null;default:broker" json:"type"`
	Currency  string    `gorm:"column:currency;type:varchar(3);not null;default:USD" json:"currency"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Platform) TableName() string {
	return "platforms"
}

func (p *Platform) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
