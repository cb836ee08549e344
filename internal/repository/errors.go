package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Leganyst/studio-calendar/internal/calendar"
)

// wrapNotFound переводит gorm.ErrRecordNotFound в calendar.ErrNotFound.
func wrapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s not found", calendar.ErrNotFound, what)
	}
	return err
}
