package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// users — справочник пользователей CRM. Движок календаря только читает его.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name  string `gorm:"type:varchar(255)"`
	Role  Role   `gorm:"type:varchar(16);not null;index"`

	IsActive bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName возвращает имя для уведомлений, при его отсутствии email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
