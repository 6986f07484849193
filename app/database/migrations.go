package database

import (
	"fmt"
	"log/slog"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

// RunMigrations creates or updates every table and seeds the settings row.
func RunMigrations(db *gorm.DB, logger *slog.Logger) error {
	logger.Info("running database migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.VerificationCode{},
		&models.Property{},
		&models.Unit{},
		&models.Tenant{},
		&models.Payment{},
		&models.Reminder{},
		&models.Settings{},
		&models.ExpenseCategory{},
		&models.Expense{},
		&models.Document{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Scheduler scans filter on both columns.
	if !db.Migrator().HasIndex(&models.Reminder{}, "idx_reminders_status_due") {
		if err := db.Exec("CREATE INDEX idx_reminders_status_due ON reminders (status, due_date)").Error; err != nil {
			logger.Warn("failed to create reminder index", "error", err)
		}
	}

	if _, err := GetSettings(db); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	logger.Info("database migrations completed successfully")
	return nil
}
