package database_test

import (
	"testing"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/database/testdb"
	"kodi-rentals/app/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func pendingSTKPayment(t *testing.T, db *gorm.DB, ownerID, tenantID, checkoutID string) *models.Payment {
	t.Helper()
	p := &models.Payment{
		UserID:            ownerID,
		TenantID:          tenantID,
		RentAmount:        decimal.NewFromInt(15000),
		Method:            models.MethodLipaNaMpesa,
		CheckoutRequestID: strPtr(checkoutID),
		Phone:             "254712345678",
	}
	require.NoError(t, database.CreatePayment(db, p))
	require.Equal(t, models.PaymentPending, p.Status)
	return p
}

func TestCreatePaymentDerivesAmountAndType(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	unit := testdb.Unit(t, db, owner.ID, 15000)
	tenant := testdb.Tenant(t, db, owner.ID, &unit.ID, "amina@example.com", "")

	p := &models.Payment{
		UserID:        owner.ID,
		TenantID:      tenant.ID,
		RentAmount:    decimal.NewFromInt(15000),
		DepositAmount: decimal.NewFromInt(30000),
		Method:        models.MethodCash,
		Date:          time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, database.CreatePayment(db, p))

	assert.Equal(t, models.PaymentTypeCombined, p.Type)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, models.PaymentPaid, p.Status)
	assert.Equal(t, "2024-05", p.MonthCovered)
	require.NotNil(t, p.UnitID)
	assert.Equal(t, unit.ID, *p.UnitID)

	stored, err := database.GetPaymentByID(db, owner.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(45000)))
}

func TestCreatePaymentRejectsZeroAmounts(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	tenant := testdb.Tenant(t, db, owner.ID, nil, "amina@example.com", "")

	p := &models.Payment{UserID: owner.ID, TenantID: tenant.ID, Method: models.MethodCash}
	assert.ErrorIs(t, database.CreatePayment(db, p), models.ErrZeroPayment)
}

func TestReconcileSuccessfulCallback(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	tenant := testdb.Tenant(t, db, owner.ID, nil, "amina@example.com", "")
	pendingSTKPayment(t, db, owner.ID, tenant.ID, "ws_CO_1")

	p, outcome, err := database.ReconcileSTKCallback(db, database.STKResult{
		CheckoutRequestID: "ws_CO_1",
		Success:           true,
		Amount:            decimal.NewFromInt(14999),
		Receipt:           "NLJ7RT61SV",
		Phone:             "254700000001",
	})
	require.NoError(t, err)
	assert.Equal(t, database.Reconciled, outcome)
	assert.Equal(t, models.PaymentPaid, p.Status)
	assert.Equal(t, "NLJ7RT61SV", p.Reference)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(14999)))
	assert.Equal(t, "254700000001", p.Phone)
}

func TestReconcileSuccessWithoutMetadataKeepsAmount(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	tenant := testdb.Tenant(t, db, owner.ID, nil, "amina@example.com", "")
	pendingSTKPayment(t, db, owner.ID, tenant.ID, "ws_CO_9")

	p, outcome, err := database.ReconcileSTKCallback(db, database.STKResult{
		CheckoutRequestID: "ws_CO_9",
		Success:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, database.Reconciled, outcome)
	assert.Equal(t, models.PaymentPaid, p.Status)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(15000)), p.Amount.String())
	assert.Equal(t, "254712345678", p.Phone)

	stored, err := database.GetPaymentByID(db, owner.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(15000)))
}

func TestReconcileFailedCallbackOnlyTouchesStatus(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	tenant := testdb.Tenant(t, db, owner.ID, nil, "amina@example.com", "")
	before := pendingSTKPayment(t, db, owner.ID, tenant.ID, "ws_CO_2")

	p, outcome, err := database.ReconcileSTKCallback(db, database.STKResult{
		CheckoutRequestID: "ws_CO_2",
		Success:           false,
		ResultDesc:        "Request cancelled by user",
		Amount:            decimal.NewFromInt(1),
		Receipt:           "IGNORED",
	})
	require.NoError(t, err)
	assert.Equal(t, database.Reconciled, outcome)
	assert.Equal(t, models.PaymentFailed, p.Status)
	assert.True(t, p.Amount.Equal(before.Amount))
	assert.Empty(t, p.Reference)
	assert.Equal(t, before.Phone, p.Phone)
	assert.Equal(t, before.MonthCovered, p.MonthCovered)
}

func TestReconcileIgnoresRedeliveredCallback(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	tenant := testdb.Tenant(t, db, owner.ID, nil, "amina@example.com", "")
	pendingSTKPayment(t, db, owner.ID, tenant.ID, "ws_CO_3")

	ok := database.STKResult{CheckoutRequestID: "ws_CO_3", Success: true, Amount: decimal.NewFromInt(15000), Receipt: "FIRST"}
	_, outcome, err := database.ReconcileSTKCallback(db, ok)
	require.NoError(t, err)
	require.Equal(t, database.Reconciled, outcome)

	late := database.STKResult{CheckoutRequestID: "ws_CO_3", Success: false}
	p, outcome, err := database.ReconcileSTKCallback(db, late)
	require.NoError(t, err)
	assert.Equal(t, database.Duplicate, outcome)
	assert.Equal(t, models.PaymentPaid, p.Status)
	assert.Equal(t, "FIRST", p.Reference)
}

func TestReconcileUnknownCheckoutIsUnmatched(t *testing.T) {
	db := testdb.New(t)

	p, outcome, err := database.ReconcileSTKCallback(db, database.STKResult{CheckoutRequestID: "nope", Success: true})
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, database.Unmatched, outcome)

	_, _, err = database.ReconcileSTKCallback(db, database.STKResult{})
	assert.Error(t, err)
}

func TestHasQualifyingPaymentSince(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	tenant := testdb.Tenant(t, db, owner.ID, nil, "amina@example.com", "")
	monthStart := models.StartOfMonth(time.Now().UTC())

	paid, err := database.HasQualifyingPaymentSince(db, tenant.ID, monthStart)
	require.NoError(t, err)
	assert.False(t, paid)

	// Last month's payment does not count.
	old := &models.Payment{UserID: owner.ID, TenantID: tenant.ID, RentAmount: decimal.NewFromInt(100),
		Method: models.MethodCash, Date: monthStart.AddDate(0, 0, -3)}
	require.NoError(t, database.CreatePayment(db, old))
	pendingSTKPayment(t, db, owner.ID, tenant.ID, "ws_CO_4")

	paid, err = database.HasQualifyingPaymentSince(db, tenant.ID, monthStart)
	require.NoError(t, err)
	assert.False(t, paid)

	partial := &models.Payment{UserID: owner.ID, TenantID: tenant.ID, RentAmount: decimal.NewFromInt(100),
		Method: models.MethodBank, Status: models.PaymentPartial, Date: monthStart.Add(time.Hour)}
	require.NoError(t, database.CreatePayment(db, partial))

	paid, err = database.HasQualifyingPaymentSince(db, tenant.ID, monthStart)
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestGetPaymentsFilters(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db, "owner@example.com")
	a := testdb.Tenant(t, db, owner.ID, nil, "a@example.com", "")
	b := testdb.Tenant(t, db, owner.ID, nil, "b@example.com", "")

	for _, tenantID := range []string{a.ID, a.ID, b.ID} {
		p := &models.Payment{UserID: owner.ID, TenantID: tenantID, RentAmount: decimal.NewFromInt(10), Method: models.MethodCash}
		require.NoError(t, database.CreatePayment(db, p))
	}
	pendingSTKPayment(t, db, owner.ID, b.ID, "ws_CO_5")

	all, err := database.GetPayments(db, owner.ID, database.PaymentFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	forA, err := database.GetPayments(db, owner.ID, database.PaymentFilters{TenantID: a.ID})
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	pending, err := database.GetPayments(db, owner.ID, database.PaymentFilters{Status: models.PaymentPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].TenantID)
}
