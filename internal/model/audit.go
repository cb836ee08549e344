package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события аудита.
type AuditEventType string

const (
	AuditSlotBooked     AuditEventType = "slot_booked"
	AuditSlotsGenerated AuditEventType = "slots_generated"
	AuditEventCreated   AuditEventType = "event_created"
	AuditEventUpdated   AuditEventType = "event_updated"
	AuditEventDeleted   AuditEventType = "event_deleted"
	AuditReminderSent   AuditEventType = "reminder_sent"
	AuditDigestSent     AuditEventType = "digest_sent"
)

// audit_events — события аудита. Используются и для дедупликации напоминаний.
type AuditEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType AuditEventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	UserID   *uuid.UUID `gorm:"type:uuid;index"`
	TargetID *uuid.UUID `gorm:"type:uuid;index"`

	Details datatypes.JSON

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (a *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
