package database

import (
	"fmt"
	"log/slog"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

// LogActivity records an activity entry. It never fails the caller; write
// errors are only logged.
func LogActivity(db *gorm.DB, logger *slog.Logger, userID string, action models.ActivityAction, entityType, entityID, description string) {
	entry := &models.ActivityLog{
		UserID:      userID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("activity log panicked", "panic", r, "action", action, "entity", entityType)
		}
	}()

	if err := db.Create(entry).Error; err != nil {
		logger.Warn("failed to record activity", "error", err, "action", action, "entity", entityType, "entity_id", entityID)
	}
}

func GetActivities(db *gorm.DB, userID string, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries := []*models.ActivityLog{}
	err := db.Scopes(owned(userID)).Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}
