package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// projects — проект клиента (съёмка). Владелец — ClientID.
type Project struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ClientID uuid.UUID `gorm:"type:uuid;not null;index"`

	Title  string `gorm:"type:varchar(255);not null"`
	Status string `gorm:"type:varchar(32);not null;default:'planning'"`

	FilmingDate *datatypes.Date

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Client *User `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
