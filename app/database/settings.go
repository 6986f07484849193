package database

import (
	"fmt"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

// GetSettings returns the singleton settings row, creating it on first read.
func GetSettings(db *gorm.DB) (*models.Settings, error) {
	s := &models.Settings{}
	err := db.Where(models.Settings{ID: models.SettingsID}).
		Attrs(models.Settings{Currency: "KES"}).
		FirstOrCreate(s).Error
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

// SaveSettings overwrites the singleton with s.
func SaveSettings(db *gorm.DB, s *models.Settings) error {
	s.ID = models.SettingsID
	if err := db.Save(s).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
