package database

import (
	"fmt"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

func GetDocuments(db *gorm.DB, userID, tenantID, propertyID string) ([]*models.Document, error) {
	q := db.Scopes(owned(userID))
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	if propertyID != "" {
		q = q.Where("property_id = ?", propertyID)
	}

	docs := []*models.Document{}
	if err := q.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func GetDocumentByID(db *gorm.DB, userID, id string) (*models.Document, error) {
	d := &models.Document{}
	if err := db.Scopes(owned(userID)).Where("id = ?", id).First(d).Error; err != nil {
		return nil, translate(err, "document")
	}
	return d, nil
}

func CreateDocument(db *gorm.DB, d *models.Document) error {
	if d.TenantID != nil {
		if _, err := GetTenantByID(db, d.UserID, *d.TenantID); err != nil {
			return err
		}
	}
	if d.PropertyID != nil {
		if _, err := GetPropertyByID(db, d.UserID, *d.PropertyID); err != nil {
			return err
		}
	}
	return db.Create(d).Error
}

func DeleteDocument(db *gorm.DB, userID, id string) error {
	res := db.Scopes(owned(userID)).Delete(&models.Document{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("document: %w", ErrNotFound)
	}
	return nil
}
