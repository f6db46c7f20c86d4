package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the local mirror of an identity-provider account. Rows are created
// lazily the first time a verified token for that account is seen.
type User struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AuthUID     string    `gorm:"column:auth_uid;type:varchar(128);not null;uniqueIndex" json:"auth_uid"`
	Email       string    `gorm:"column:email;type:varchar(255);not null" json:"email"`
	DisplayName string    `gorm:"column:display_name;type:varchar(255)" json:"display_name"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
