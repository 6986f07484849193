package database_test

import (
	"testing"

	"kodi-rentals/app/database"
	"kodi-rentals/app/database/testdb"
	"kodi-rentals/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTenantOccupiesUnit(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)
	assert.Equal(t, models.UnitVacant, unit.Status)

	testdb.Tenant(t, db, owner.ID, &unit.ID, "amina@example.com", "0712345678")

	got, err := database.GetUnitByID(db, owner.ID, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitOccupied, got.Status)
}

func TestSecondActiveTenantIsRejected(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)
	testdb.Tenant(t, db, owner.ID, &unit.ID, "amina@example.com", "")

	second := &models.Tenant{UserID: owner.ID, FirstName: "Brian", UnitID: &unit.ID}
	err := database.CreateTenant(db, second)
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestDeleteActiveTenantVacatesUnit(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)
	tenant := testdb.Tenant(t, db, owner.ID, &unit.ID, "amina@example.com", "")

	_, err := database.DeleteTenant(db, owner.ID, tenant.ID)
	require.NoError(t, err)

	got, err := database.GetUnitByID(db, owner.ID, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitVacant, got.Status)
}

func TestDeletePastTenantLeavesUnitAlone(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)

	past := &models.Tenant{UserID: owner.ID, FirstName: "Old", UnitID: &unit.ID, Status: models.TenantPast}
	require.NoError(t, database.CreateTenant(db, past))
	current := testdb.Tenant(t, db, owner.ID, &unit.ID, "new@example.com", "")
	require.NotEqual(t, past.ID, current.ID)

	_, err := database.DeleteTenant(db, owner.ID, past.ID)
	require.NoError(t, err)

	got, err := database.GetUnitByID(db, owner.ID, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitOccupied, got.Status)
}

func TestMovingTenantUpdatesBothUnits(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	first := testdb.Unit(t, db, owner.ID, 15000)
	second := testdb.Unit(t, db, owner.ID, 20000)
	tenant := testdb.Tenant(t, db, owner.ID, &first.ID, "amina@example.com", "")

	tenant.UnitID = &second.ID
	require.NoError(t, database.UpdateTenant(db, tenant))

	a, err := database.GetUnitByID(db, owner.ID, first.ID)
	require.NoError(t, err)
	b, err := database.GetUnitByID(db, owner.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitVacant, a.Status)
	assert.Equal(t, models.UnitOccupied, b.Status)
}

func TestEndingTenancyVacatesUnit(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)
	tenant := testdb.Tenant(t, db, owner.ID, &unit.ID, "amina@example.com", "")

	tenant.Status = models.TenantPast
	require.NoError(t, database.UpdateTenant(db, tenant))

	got, err := database.GetUnitByID(db, owner.ID, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitVacant, got.Status)
}

func TestUnitUnderMaintenanceRules(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)

	unit.Status = models.UnitMaintenance
	require.NoError(t, database.UpdateUnit(db, unit))
	assert.Equal(t, models.UnitMaintenance, unit.Status)

	tenant := &models.Tenant{UserID: owner.ID, FirstName: "Brian", UnitID: &unit.ID}
	assert.ErrorIs(t, database.CreateTenant(db, tenant), database.ErrConflict)

	unit.Status = models.UnitVacant
	require.NoError(t, database.UpdateUnit(db, unit))
	testdb.Tenant(t, db, owner.ID, &unit.ID, "brian@example.com", "")

	unit.Status = models.UnitMaintenance
	assert.ErrorIs(t, database.UpdateUnit(db, unit), database.ErrConflict)
	assert.ErrorIs(t, database.DeleteUnit(db, owner.ID, unit.ID), database.ErrConflict)
}

func TestRequestingOccupiedWithoutTenantStaysVacant(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)

	unit.Status = models.UnitOccupied
	require.NoError(t, database.UpdateUnit(db, unit))
	assert.Equal(t, models.UnitVacant, unit.Status)
}

func TestTenantsAreScopedToOwner(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	other := testdb.User(t, db, "other@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)
	tenant := testdb.Tenant(t, db, owner.ID, &unit.ID, "amina@example.com", "")

	_, err := database.GetTenantByID(db, other.ID, tenant.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	intruder := &models.Tenant{UserID: other.ID, FirstName: "X", UnitID: &unit.ID}
	assert.ErrorIs(t, database.CreateTenant(db, intruder), database.ErrNotFound)
}

func TestDeletePropertyWithOccupiedUnitConflicts(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)
	tenant := testdb.Tenant(t, db, owner.ID, &unit.ID, "amina@example.com", "")

	assert.ErrorIs(t, database.DeleteProperty(db, owner.ID, unit.PropertyID), database.ErrConflict)

	_, err := database.DeleteTenant(db, owner.ID, tenant.ID)
	require.NoError(t, err)
	require.NoError(t, database.DeleteProperty(db, owner.ID, unit.PropertyID))

	units, err := database.GetAllUnits(db, owner.ID, "")
	require.NoError(t, err)
	assert.Empty(t, units)
}
