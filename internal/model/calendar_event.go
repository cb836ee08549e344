package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип события календаря.
type CalendarEventType string

const (
	CalendarEventFilming      CalendarEventType = "filming"
	CalendarEventConsultation CalendarEventType = "consultation"
	CalendarEventMeeting      CalendarEventType = "meeting"
	CalendarEventEditing      CalendarEventType = "editing"
	CalendarEventDelivery     CalendarEventType = "delivery"
	CalendarEventOther        CalendarEventType = "other"
	CalendarEventBlocked      CalendarEventType = "blocked"
)

// CalendarEventTypes — допустимые значения event_type.
var CalendarEventTypes = []CalendarEventType{
	CalendarEventFilming,
	CalendarEventConsultation,
	CalendarEventMeeting,
	CalendarEventEditing,
	CalendarEventDelivery,
	CalendarEventOther,
	CalendarEventBlocked,
}

func (t CalendarEventType) Valid() bool {
	for _, v := range CalendarEventTypes {
		if v == t {
			return true
		}
	}
	return false
}

// calendar_events
//
// IsAvailableSlot = false — занятое время студии, участвует в проверке конфликтов.
// IsAvailableSlot = true — слот для бронирования; IsBooked и BookedBy имеют смысл только для них.
type CalendarEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ProjectID  *uuid.UUID `gorm:"type:uuid;index"`
	ClientID   *uuid.UUID `gorm:"type:uuid;index"`
	ScheduleID *uuid.UUID `gorm:"type:uuid;index"`

	Title       string            `gorm:"type:varchar(255);not null"`
	Description *string           `gorm:"type:text"`
	EventType   CalendarEventType `gorm:"type:varchar(32);not null;default:'filming';index"`

	StartAt LocalDateTime `gorm:"column:start_datetime;not null;index"`
	EndAt   LocalDateTime `gorm:"column:end_datetime;not null"`

	Location *string `gorm:"type:varchar(255)"`
	AllDay   bool    `gorm:"not null;default:false"`

	IsAvailableSlot bool       `gorm:"not null;default:false;index"`
	IsBooked        bool       `gorm:"not null;default:false"`
	BookedBy        *uuid.UUID `gorm:"type:uuid;index"`

	Color *string `gorm:"type:varchar(16)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Навигационные поля для Preload.
	Project  *Project      `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Client   *User         `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Schedule *SlotSchedule `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Committed сообщает, занимает ли событие время студии.
func (e *CalendarEvent) Committed() bool {
	return !e.IsAvailableSlot
}

// OwnerID возвращает клиента, которому принадлежит событие: напрямую или через проект.
func (e *CalendarEvent) OwnerID() *uuid.UUID {
	if e.ClientID != nil {
		return e.ClientID
	}
	if e.Project != nil {
		id := e.Project.ClientID
		return &id
	}
	return e.BookedBy
}
