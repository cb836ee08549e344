package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/studio-calendar/internal/config"
	"github.com/Leganyst/studio-calendar/internal/model"
)

func TestNewGormDB_SQLiteMigrates(t *testing.T) {
	cfg := &config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:", MaxOpenConns: 1}

	gdb, err := NewGormDB(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gdb))

	for _, table := range []string{"users", "projects", "calendar_events", "slot_schedules", "notifications", "audit_events"} {
		assert.True(t, gdb.Migrator().HasTable(table), "table %s", table)
	}
	assert.True(t, gdb.Migrator().HasColumn(&model.CalendarEvent{}, "start_datetime"))
}

func TestNewGormDB_UnknownDriver(t *testing.T) {
	_, err := NewGormDB(&config.DBConfig{Driver: "oracle"}, nil)
	require.Error(t, err)
}

func TestNewGormDB_SQLiteSingleConnection(t *testing.T) {
	cfg := &config.DBConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "calendar.db"),
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}

	gdb, err := NewGormDB(cfg, nil)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	var timeout int
	require.NoError(t, gdb.Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, sqliteBusyTimeoutMs, timeout)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on&_busy_timeout=5000", sqliteDSN(":memory:"))
	assert.Equal(t, "file:cal.db?cache=shared&_foreign_keys=on&_busy_timeout=5000", sqliteDSN("file:cal.db?cache=shared"))
}
