package database

import (
	"fmt"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

func GetAllTenants(db *gorm.DB, userID string, status models.TenantStatus) ([]*models.Tenant, error) {
	q := db.Scopes(owned(userID)).Preload("Unit.Property")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	tenants := []*models.Tenant{}
	if err := q.Order("first_name ASC, last_name ASC").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func GetTenantByID(db *gorm.DB, userID, id string) (*models.Tenant, error) {
	t := &models.Tenant{}
	if err := db.Scopes(owned(userID)).Preload("Unit.Property").Where("id = ?", id).First(t).Error; err != nil {
		return nil, translate(err, "tenant")
	}
	return t, nil
}

// CreateTenant stores a tenant and, for an active tenancy, occupies the unit
// in the same transaction.
func CreateTenant(db *gorm.DB, t *models.Tenant) error {
	if t.Status == "" {
		t.Status = models.TenantActive
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if t.UnitID != nil {
			if err := checkUnitOwner(tx, t.UserID, *t.UnitID); err != nil {
				return err
			}
			if t.IsActive() {
				if err := claimUnit(tx, t.UserID, *t.UnitID, ""); err != nil {
					return err
				}
			}
		}
		if err := tx.Omit("Unit").Create(t).Error; err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		if t.UnitID != nil {
			return syncUnitOccupancy(tx, *t.UnitID)
		}
		return nil
	})
}

// UpdateTenant applies edits, including moving units or ending the tenancy,
// and re-derives the status of every unit involved.
func UpdateTenant(db *gorm.DB, t *models.Tenant) error {
	return db.Transaction(func(tx *gorm.DB) error {
		current, err := GetTenantByID(tx, t.UserID, t.ID)
		if err != nil {
			return err
		}
		if t.Status == "" {
			t.Status = current.Status
		}

		if t.UnitID != nil {
			if err := checkUnitOwner(tx, t.UserID, *t.UnitID); err != nil {
				return err
			}
			if t.IsActive() {
				if err := claimUnit(tx, t.UserID, *t.UnitID, t.ID); err != nil {
					return err
				}
			}
		}

		err = tx.Model(&models.Tenant{}).Where("id = ?", t.ID).Updates(map[string]any{
			"first_name":   t.FirstName,
			"last_name":    t.LastName,
			"email":        t.Email,
			"phone":        t.Phone,
			"national_id":  t.NationalID,
			"unit_id":      t.UnitID,
			"lease_start":  t.LeaseStart,
			"lease_end":    t.LeaseEnd,
			"rent_amount":  t.RentAmount,
			"deposit_paid": t.DepositPaid,
			"status":       t.Status,
		}).Error
		if err != nil {
			return fmt.Errorf("update tenant: %w", err)
		}

		affected := map[string]bool{}
		if current.UnitID != nil {
			affected[*current.UnitID] = true
		}
		if t.UnitID != nil {
			affected[*t.UnitID] = true
		}
		for unitID := range affected {
			if err := syncUnitOccupancy(tx, unitID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTenant removes a tenant. An active tenant's unit is vacated; a past
// tenant's former unit is left untouched.
func DeleteTenant(db *gorm.DB, userID, id string) (*models.Tenant, error) {
	var deleted *models.Tenant
	err := db.Transaction(func(tx *gorm.DB) error {
		t, err := GetTenantByID(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Tenant{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete tenant: %w", err)
		}
		if t.IsActive() && t.UnitID != nil {
			if err := syncUnitOccupancy(tx, *t.UnitID); err != nil {
				return err
			}
		}
		deleted = t
		return nil
	})
	return deleted, err
}

// GetActiveTenants lists every active tenant of an account.
func GetActiveTenants(db *gorm.DB, userID string) ([]*models.Tenant, error) {
	return GetAllTenants(db, userID, models.TenantActive)
}

func checkUnitOwner(tx *gorm.DB, userID, unitID string) error {
	var n int64
	if err := tx.Model(&models.Unit{}).Scopes(owned(userID)).Where("id = ?", unitID).Count(&n).Error; err != nil {
		return fmt.Errorf("check unit: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("unit: %w", ErrNotFound)
	}
	return nil
}
