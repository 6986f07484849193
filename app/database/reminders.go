package database

import (
	"fmt"
	"time"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

func GetReminders(db *gorm.DB, userID string) ([]*models.Reminder, error) {
	reminders := []*models.Reminder{}
	if err := db.Scopes(owned(userID)).Order("due_date DESC").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

func CreateReminder(db *gorm.DB, r *models.Reminder) error {
	r.Status = models.ReminderPending
	r.SentAt = nil
	r.DueDate = r.DueDate.UTC()
	if r.Frequency == "" {
		r.Frequency = models.FrequencyOnce
	}
	return db.Create(r).Error
}

func DeleteReminder(db *gorm.DB, userID, id string) error {
	res := db.Scopes(owned(userID)).Delete(&models.Reminder{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete reminder: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reminder: %w", ErrNotFound)
	}
	return nil
}

// GetDueReminders returns pending reminders whose due date is at or before now.
func GetDueReminders(db *gorm.DB, now time.Time) ([]*models.Reminder, error) {
	reminders := []*models.Reminder{}
	err := db.Where("status = ? AND due_date <= ?", models.ReminderPending, now.UTC()).
		Order("due_date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("load due reminders: %w", err)
	}
	return reminders, nil
}

// MarkReminderSent performs the one-way pending -> sent transition. It
// reports false when the reminder was no longer pending.
func MarkReminderSent(db *gorm.DB, id string, recipients, failures int, at time.Time) (bool, error) {
	at = at.UTC()
	res := db.Model(&models.Reminder{}).
		Where("id = ? AND status = ?", id, models.ReminderPending).
		Updates(map[string]any{
			"status":     models.ReminderSent,
			"sent_at":    &at,
			"recipients": recipients,
			"failures":   failures,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark reminder sent: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
