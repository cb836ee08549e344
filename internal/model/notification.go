package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationSlotBooked = "slot_booked"
	NotificationReminder   = "event_reminder"
	NotificationDigest     = "daily_digest"
)

// notifications — входящие уведомления пользователя в дашборде.
type Notification struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Type    string  `gorm:"type:varchar(32);not null"`
	Title   string  `gorm:"type:varchar(255);not null"`
	Message string  `gorm:"type:text;not null"`
	Link    *string `gorm:"type:varchar(255)"`
	IsRead  bool    `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;index"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
