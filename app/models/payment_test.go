package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBreakdown(t *testing.T) {
	tests := []struct {
		name    string
		rent    int64
		deposit int64
		want    PaymentType
		total   int64
	}{
		{"rent only", 15000, 0, PaymentTypeRent, 15000},
		{"deposit only", 0, 30000, PaymentTypeDeposit, 30000},
		{"rent and deposit", 15000, 30000, PaymentTypeCombined, 45000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payment{RentAmount: decimal.NewFromInt(tt.rent), DepositAmount: decimal.NewFromInt(tt.deposit)}
			require.NoError(t, p.ApplyBreakdown())
			assert.Equal(t, tt.want, p.Type)
			assert.True(t, p.Amount.Equal(decimal.NewFromInt(tt.total)), "amount %s", p.Amount)
		})
	}
}

func TestApplyBreakdownRejectsZeroAndNegative(t *testing.T) {
	p := &Payment{}
	assert.ErrorIs(t, p.ApplyBreakdown(), ErrZeroPayment)

	p = &Payment{RentAmount: decimal.NewFromInt(-5), DepositAmount: decimal.NewFromInt(10)}
	assert.Error(t, p.ApplyBreakdown())
}

func TestParsePaymentStatus(t *testing.T) {
	cases := map[string]PaymentStatus{
		"Completed": PaymentPaid,
		"paid":      PaymentPaid,
		"Pending":   PaymentPending,
		"Failed":    PaymentFailed,
		"PARTIAL":   PaymentPartial,
		" overdue ": PaymentOverdue,
	}
	for in, want := range cases {
		got, err := ParsePaymentStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePaymentStatus("refunded")
	assert.Error(t, err)
}

func TestStartOfMonth(t *testing.T) {
	in := time.Date(2024, 5, 17, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(in))
	assert.Equal(t, "2024-05", MonthKey(in))
}

func TestSettingsMasking(t *testing.T) {
	stored := Settings{}
	stored.SMTP.Password = "smtp-secret"
	stored.Mpesa.Passkey = "pk"

	masked := stored.Masked()
	assert.Equal(t, MaskedSecret, masked.SMTP.Password)
	assert.Equal(t, MaskedSecret, masked.Mpesa.Passkey)
	assert.Empty(t, masked.SMS.APIKey)

	incoming := masked
	incoming.Mpesa.Passkey = "new-pk"
	incoming.KeepSecrets(stored)
	assert.Equal(t, "smtp-secret", incoming.SMTP.Password)
	assert.Equal(t, "new-pk", incoming.Mpesa.Passkey)
}
