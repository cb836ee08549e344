package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// slot_schedules — один запуск генерации слотов.
type SlotSchedule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`

	// Чистые даты без времени — datatypes.Date
	StartDate datatypes.Date `gorm:"not null"`
	EndDate   datatypes.Date `gorm:"not null"`

	// Параметры запроса генерации в виде JSON.
	Rules datatypes.JSON

	SlotCount int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
}

func (s *SlotSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
