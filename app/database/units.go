package database

import (
	"fmt"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

func GetAllUnits(db *gorm.DB, userID, propertyID string) ([]*models.Unit, error) {
	q := db.Scopes(owned(userID)).Preload("Property")
	if propertyID != "" {
		q = q.Where("property_id = ?", propertyID)
	}

	units := []*models.Unit{}
	if err := q.Order("unit_number ASC").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

func GetUnitByID(db *gorm.DB, userID, id string) (*models.Unit, error) {
	u := &models.Unit{}
	if err := db.Scopes(owned(userID)).Preload("Property").Where("id = ?", id).First(u).Error; err != nil {
		return nil, translate(err, "unit")
	}
	return u, nil
}

// CreateUnit adds a unit to an owned property. New units start vacant unless
// they are explicitly put under maintenance.
func CreateUnit(db *gorm.DB, u *models.Unit) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetPropertyByID(tx, u.UserID, u.PropertyID); err != nil {
			return err
		}
		if err := ensureUnitNumberFree(tx, u.PropertyID, u.UnitNumber, ""); err != nil {
			return err
		}
		if u.Status != models.UnitMaintenance {
			u.Status = models.UnitVacant
		}
		if err := tx.Create(u).Error; err != nil {
			return fmt.Errorf("create unit: %w", err)
		}
		return nil
	})
}

// UpdateUnit edits a unit. Only vacant and maintenance can be requested; the
// occupied state belongs to syncUnitOccupancy.
func UpdateUnit(db *gorm.DB, u *models.Unit) error {
	return db.Transaction(func(tx *gorm.DB) error {
		current, err := GetUnitByID(tx, u.UserID, u.ID)
		if err != nil {
			return err
		}
		if u.UnitNumber != current.UnitNumber {
			if err := ensureUnitNumberFree(tx, current.PropertyID, u.UnitNumber, u.ID); err != nil {
				return err
			}
		}

		status := current.Status
		switch u.Status {
		case models.UnitMaintenance:
			active, err := countActiveTenants(tx, u.ID, "")
			if err != nil {
				return err
			}
			if active > 0 {
				return conflict("unit %s has an active tenant", current.UnitNumber)
			}
			status = models.UnitMaintenance
		case models.UnitVacant:
			status = models.UnitVacant
		}

		err = tx.Model(&models.Unit{}).Where("id = ?", u.ID).Updates(map[string]any{
			"unit_number":    u.UnitNumber,
			"rent_amount":    u.RentAmount,
			"deposit_amount": u.DepositAmount,
			"bedrooms":       u.Bedrooms,
			"status":         status,
		}).Error
		if err != nil {
			return fmt.Errorf("update unit: %w", err)
		}
		if err := syncUnitOccupancy(tx, u.ID); err != nil {
			return err
		}
		return tx.Where("id = ?", u.ID).First(u).Error
	})
}

// DeleteUnit removes a unit that has no active tenant.
func DeleteUnit(db *gorm.DB, userID, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetUnitByID(tx, userID, id); err != nil {
			return err
		}
		active, err := countActiveTenants(tx, id, "")
		if err != nil {
			return err
		}
		if active > 0 {
			return conflict("unit has an active tenant")
		}
		if err := tx.Model(&models.Tenant{}).Where("unit_id = ?", id).Update("unit_id", nil).Error; err != nil {
			return fmt.Errorf("detach past tenants: %w", err)
		}
		return tx.Delete(&models.Unit{}, "id = ?", id).Error
	})
}

func ensureUnitNumberFree(tx *gorm.DB, propertyID, number, exceptID string) error {
	q := tx.Model(&models.Unit{}).Where("property_id = ? AND unit_number = ?", propertyID, number)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check unit number: %w", err)
	}
	if n > 0 {
		return conflict("unit number %s already exists in this property", number)
	}
	return nil
}
