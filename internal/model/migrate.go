package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей календаря студии.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Project{},
		&SlotSchedule{},
		&CalendarEvent{},
		&Notification{},
		&AuditEvent{},
	)
}
