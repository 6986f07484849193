package database

import (
	"fmt"
	"time"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

// Expense Queries
func GetAllExpenses(db *gorm.DB, userID, propertyID string) ([]*models.Expense, error) {
	q := db.Scopes(owned(userID)).Preload("Category")
	if propertyID != "" {
		q = q.Where("property_id = ?", propertyID)
	}

	expenses := []*models.Expense{} // Initialize to empty slice for non-null JSON
	if err := q.Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func CreateExpense(db *gorm.DB, e *models.Expense) error {
	if err := checkCategoryOwner(db, e.UserID, e.CategoryID); err != nil {
		return err
	}
	if e.PropertyID != nil {
		if _, err := GetPropertyByID(db, e.UserID, *e.PropertyID); err != nil {
			return err
		}
	}
	if e.Currency == "" {
		e.Currency = "KES"
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	e.Date = e.Date.UTC()
	return db.Omit("Category").Create(e).Error
}

func UpdateExpense(db *gorm.DB, e *models.Expense) error {
	if err := checkCategoryOwner(db, e.UserID, e.CategoryID); err != nil {
		return err
	}
	res := db.Model(&models.Expense{}).Scopes(owned(e.UserID)).Where("id = ?", e.ID).Updates(map[string]any{
		"property_id": e.PropertyID,
		"category_id": e.CategoryID,
		"title":       e.Title,
		"amount":      e.Amount,
		"currency":    e.Currency,
		"date":        e.Date.UTC(),
		"notes":       e.Notes,
	})
	if res.Error != nil {
		return fmt.Errorf("update expense: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("expense: %w", ErrNotFound)
	}
	return nil
}

func DeleteExpense(db *gorm.DB, userID, id string) error {
	res := db.Scopes(owned(userID)).Delete(&models.Expense{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete expense: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("expense: %w", ErrNotFound)
	}
	return nil
}

// Category Queries
func GetAllCategories(db *gorm.DB, userID string) ([]*models.ExpenseCategory, error) {
	categories := []*models.ExpenseCategory{}
	if err := db.Scopes(owned(userID)).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func CreateCategory(db *gorm.DB, c *models.ExpenseCategory) error {
	var n int64
	if err := db.Model(&models.ExpenseCategory{}).Scopes(owned(c.UserID)).Where("name = ?", c.Name).Count(&n).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n > 0 {
		return conflict("category %q already exists", c.Name)
	}
	return db.Create(c).Error
}

func UpdateCategory(db *gorm.DB, c *models.ExpenseCategory) error {
	res := db.Model(&models.ExpenseCategory{}).Scopes(owned(c.UserID)).Where("id = ?", c.ID).
		Updates(map[string]any{"name": c.Name, "is_active": c.IsActive})
	if res.Error != nil {
		return fmt.Errorf("update category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category: %w", ErrNotFound)
	}
	return nil
}

// DeleteCategory refuses while expenses still reference the category.
func DeleteCategory(db *gorm.DB, userID, id string) error {
	var used int64
	if err := db.Model(&models.Expense{}).Where("category_id = ?", id).Count(&used).Error; err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if used > 0 {
		return conflict("category is used by %d expense(s)", used)
	}
	res := db.Scopes(owned(userID)).Delete(&models.ExpenseCategory{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category: %w", ErrNotFound)
	}
	return nil
}

func checkCategoryOwner(db *gorm.DB, userID, categoryID string) error {
	var n int64
	if err := db.Model(&models.ExpenseCategory{}).Scopes(owned(userID)).Where("id = ?", categoryID).Count(&n).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category: %w", ErrNotFound)
	}
	return nil
}
