package database

import (
	"fmt"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// syncUnitOccupancy derives a unit's status from its tenancy. Every mutation
// that can change who occupies a unit calls it inside its own transaction,
// so units.status never disagrees with the tenants table.
//
// An active tenant makes the unit occupied. Without one, occupied falls back
// to vacant while maintenance is left alone.
func syncUnitOccupancy(tx *gorm.DB, unitID string) error {
	unit, err := lockUnit(tx, unitID)
	if err != nil {
		return err
	}

	active, err := countActiveTenants(tx, unitID, "")
	if err != nil {
		return err
	}

	next := unit.Status
	switch {
	case active > 0:
		next = models.UnitOccupied
	case unit.Status == models.UnitOccupied:
		next = models.UnitVacant
	}
	if next == unit.Status {
		return nil
	}

	if err := tx.Model(&models.Unit{}).Where("id = ?", unitID).Update("status", next).Error; err != nil {
		return fmt.Errorf("update unit status: %w", err)
	}
	return nil
}

// claimUnit verifies a unit can take tenantID as its active tenant.
func claimUnit(tx *gorm.DB, userID, unitID, tenantID string) error {
	unit, err := lockUnit(tx, unitID)
	if err != nil {
		return err
	}
	if unit.UserID != userID {
		return fmt.Errorf("unit: %w", ErrNotFound)
	}
	if unit.Status == models.UnitMaintenance {
		return conflict("unit %s is under maintenance", unit.UnitNumber)
	}

	others, err := countActiveTenants(tx, unitID, tenantID)
	if err != nil {
		return err
	}
	if others > 0 {
		return conflict("unit %s already has an active tenant", unit.UnitNumber)
	}
	return nil
}

func lockUnit(tx *gorm.DB, unitID string) (*models.Unit, error) {
	unit := &models.Unit{}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", unitID).First(unit).Error
	if err != nil {
		return nil, translate(err, "unit")
	}
	return unit, nil
}

func countActiveTenants(tx *gorm.DB, unitID, excludeTenantID string) (int64, error) {
	q := tx.Model(&models.Tenant{}).Where("unit_id = ? AND status = ?", unitID, models.TenantActive)
	if excludeTenantID != "" {
		q = q.Where("id <> ?", excludeTenantID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count active tenants: %w", err)
	}
	return n, nil
}
