package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist or is owned by another account.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a change would break a uniqueness or occupancy rule.
	ErrConflict = errors.New("conflict")
	// ErrInvalid is returned when a record fails validation.
	ErrInvalid = errors.New("invalid")
)

// translate maps gorm's not-found error onto ErrNotFound, wrapping with what.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

// owned scopes a query to records belonging to userID.
func owned(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
