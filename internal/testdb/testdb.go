// Package testdb поднимает sqlite в памяти со схемой календаря для тестов.
package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/studio-calendar/internal/config"
	"github.com/Leganyst/studio-calendar/internal/db"
	"github.com/Leganyst/studio-calendar/internal/model"
)

// Open возвращает мигрированную БД. Одно соединение: у каждого соединения
// к :memory: своя база, а бронирование проверяется на сериализации записей.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.NewGormDB(&config.DBConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}

func CreateUser(t testing.TB, gdb *gorm.DB, role model.Role, name string) *model.User {
	t.Helper()
	u := &model.User{
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func CreateProject(t testing.TB, gdb *gorm.DB, clientID uuid.UUID, title string) *model.Project {
	t.Helper()
	p := &model.Project{ClientID: clientID, Title: title, Status: "booked"}
	require.NoError(t, gdb.Omit("Client").Create(p).Error)
	return p
}

// CreateEvent сохраняет событие с границами в формате YYYY-MM-DDTHH:MM:SS.
func CreateEvent(t testing.TB, gdb *gorm.DB, title, start, end string, slot bool) *model.CalendarEvent {
	t.Helper()
	s, err := model.ParseLocalDateTime(start)
	require.NoError(t, err)
	e, err := model.ParseLocalDateTime(end)
	require.NoError(t, err)

	ev := &model.CalendarEvent{
		Title:           title,
		EventType:       model.CalendarEventFilming,
		StartAt:         s,
		EndAt:           e,
		IsAvailableSlot: slot,
	}
	require.NoError(t, gdb.Omit("Project", "Client", "Schedule").Create(ev).Error)
	return ev
}
