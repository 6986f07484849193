package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a property running cost
type Expense struct {
	Base
	UserID     string           `json:"userId" gorm:"not null;index;size:36"`
	PropertyID *string          `json:"propertyId,omitempty" gorm:"index;size:36"`
	CategoryID string           `json:"categoryId" gorm:"not null;index;size:36"`
	Title      string           `json:"title" gorm:"not null"`
	Amount     decimal.Decimal  `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency   string           `json:"currency" gorm:"not null;default:KES;size:3"`
	Date       time.Time        `json:"date" gorm:"not null;index"`
	Notes      string           `json:"notes,omitempty" gorm:"type:text"`
	Category   *ExpenseCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
}

// ExpenseCategory groups expenses, e.g. "Repairs" or "Utilities".
type ExpenseCategory struct {
	Base
	UserID   string `json:"userId" gorm:"not null;uniqueIndex:idx_category_user_name;size:36"`
	Name     string `json:"name" gorm:"not null;uniqueIndex:idx_category_user_name"`
	IsActive bool   `json:"isActive" gorm:"default:true"`
}

// Document is metadata for a file held in blob storage.
type Document struct {
	Base
	UserID      string  `json:"userId" gorm:"not null;index;size:36"`
	TenantID    *string `json:"tenantId,omitempty" gorm:"index;size:36"`
	PropertyID  *string `json:"propertyId,omitempty" gorm:"index;size:36"`
	Name        string  `json:"name" gorm:"not null"`
	ContentType string  `json:"contentType"`
	Size        int64   `json:"size"`
	StorageKey  string  `json:"-" gorm:"not null;uniqueIndex"`
}
