package models

import "time"

// Reminder is a scheduled notification intent. It fires once.
type Reminder struct {
	Base
	UserID     string             `json:"userId" gorm:"not null;index;size:36"`
	Title      string             `json:"title" gorm:"not null"`
	Message    string             `json:"message" gorm:"type:text"`
	Type       ReminderType       `json:"type" gorm:"not null;size:20"`
	Method     NotificationMethod `json:"method" gorm:"not null;size:10"`
	Frequency  ReminderFrequency  `json:"frequency" gorm:"not null;size:10;default:once"`
	DueDate    time.Time          `json:"dueDate" gorm:"not null;index"`
	Status     ReminderStatus     `json:"status" gorm:"not null;size:10;default:pending;index"`
	SentAt     *time.Time         `json:"sentAt,omitempty"`
	Recipients int                `json:"recipients"`
	Failures   int                `json:"failures"`
}

// ActivityLog records a user-visible event. Writes are best-effort.
type ActivityLog struct {
	Base
	UserID      string         `json:"userId" gorm:"not null;index;size:36"`
	Action      ActivityAction `json:"action" gorm:"not null;size:20"`
	EntityType  string         `json:"entityType" gorm:"size:30"`
	EntityID    string         `json:"entityId,omitempty" gorm:"size:36"`
	Description string         `json:"description"`
}
