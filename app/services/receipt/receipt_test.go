package receipt

import (
	"bytes"
	"testing"
	"time"

	"kodi-rentals/app/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	p := &models.Payment{
		RentAmount:    decimal.NewFromInt(15000),
		DepositAmount: decimal.NewFromInt(15000),
		Amount:        decimal.NewFromInt(30000),
		Date:          time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
		Method:        models.MethodLipaNaMpesa,
		Status:        models.PaymentPaid,
		MonthCovered:  "2024-05",
		Reference:     "NLJ7RT61SV",
		Tenant:        &models.Tenant{FirstName: "Amina", LastName: "Otieno"},
		Unit:          &models.Unit{UnitNumber: "A1", Property: &models.Property{Name: "Riverside"}},
	}
	p.ID = "3f2a9c1e-0000-4000-8000-000000000000"

	out, err := Render(Data{CompanyName: "Kodi Homes", Currency: "KES", Payment: p})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)

	assert.Equal(t, "RCT-3F2A9C1E", Number(p))
	assert.Equal(t, "rct-3f2a9c1e.pdf", Filename(p))
}

func TestRenderWithoutRelations(t *testing.T) {
	p := &models.Payment{Amount: decimal.NewFromInt(500), RentAmount: decimal.NewFromInt(500), Method: models.MethodCash}
	p.ID = "abc"
	_, err := Render(Data{Payment: p})
	assert.NoError(t, err)

	_, err = Render(Data{})
	assert.Error(t, err)
}
