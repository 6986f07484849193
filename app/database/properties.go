package database

import (
	"fmt"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

func GetAllProperties(db *gorm.DB, userID string) ([]*models.Property, error) {
	properties := []*models.Property{} // Initialize to empty slice for non-null JSON
	if err := db.Scopes(owned(userID)).Order("name ASC").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}

	type unitCount struct {
		PropertyID string
		Count      int64
	}
	var counts []unitCount
	err := db.Model(&models.Unit{}).Scopes(owned(userID)).
		Select("property_id, COUNT(*) AS count").
		Group("property_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count units: %w", err)
	}

	byProperty := make(map[string]int64, len(counts))
	for _, c := range counts {
		byProperty[c.PropertyID] = c.Count
	}
	for _, p := range properties {
		p.UnitCount = byProperty[p.ID]
	}
	return properties, nil
}

func GetPropertyByID(db *gorm.DB, userID, id string) (*models.Property, error) {
	p := &models.Property{}
	if err := db.Scopes(owned(userID)).Where("id = ?", id).First(p).Error; err != nil {
		return nil, translate(err, "property")
	}
	if err := db.Model(&models.Unit{}).Where("property_id = ?", id).Count(&p.UnitCount).Error; err != nil {
		return nil, fmt.Errorf("count units: %w", err)
	}
	return p, nil
}

func CreateProperty(db *gorm.DB, p *models.Property) error {
	if p.Type == "" {
		p.Type = models.PropertyApartment
	}
	return db.Create(p).Error
}

func UpdateProperty(db *gorm.DB, p *models.Property) error {
	res := db.Model(&models.Property{}).Scopes(owned(p.UserID)).Where("id = ?", p.ID).
		Select("name", "address", "city", "type", "description").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("update property: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("property: %w", ErrNotFound)
	}
	return nil
}

// DeleteProperty removes a property and its units. It refuses while any unit
// still has an active tenant.
func DeleteProperty(db *gorm.DB, userID, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetPropertyByID(tx, userID, id); err != nil {
			return err
		}

		var occupied int64
		err := tx.Model(&models.Tenant{}).
			Joins("JOIN units ON units.id = tenants.unit_id").
			Where("units.property_id = ? AND tenants.status = ?", id, models.TenantActive).
			Count(&occupied).Error
		if err != nil {
			return fmt.Errorf("check tenancy: %w", err)
		}
		if occupied > 0 {
			return conflict("property has %d occupied unit(s)", occupied)
		}

		// Past tenants keep their history but lose the dangling unit reference.
		err = tx.Model(&models.Tenant{}).
			Where("unit_id IN (?)", tx.Model(&models.Unit{}).Select("id").Where("property_id = ?", id)).
			Update("unit_id", nil).Error
		if err != nil {
			return fmt.Errorf("detach past tenants: %w", err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Unit{}).Error; err != nil {
			return fmt.Errorf("delete units: %w", err)
		}
		return tx.Delete(&models.Property{}, "id = ?", id).Error
	})
}
