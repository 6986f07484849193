package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrZeroPayment is returned when neither rent nor deposit carries a positive amount.
var ErrZeroPayment = errors.New("payment must include a rent or deposit amount")

// Payment represents one rent/deposit transaction attempt by a tenant.
type Payment struct {
	Base
	UserID            string          `json:"userId" gorm:"not null;index;size:36"`
	TenantID          string          `json:"tenantId" gorm:"not null;index;size:36"`
	UnitID            *string         `json:"unitId,omitempty" gorm:"index;size:36"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	RentAmount        decimal.Decimal `json:"rentAmount" gorm:"type:decimal(12,2);not null;default:0"`
	DepositAmount     decimal.Decimal `json:"depositAmount" gorm:"type:decimal(12,2);not null;default:0"`
	Date              time.Time       `json:"date" gorm:"not null;index"`
	Method            PaymentMethod   `json:"method" gorm:"not null;size:20"`
	Status            PaymentStatus   `json:"status" gorm:"not null;size:10;default:pending;index"`
	MonthCovered      string          `json:"monthCovered" gorm:"size:7;index"`
	Type              PaymentType     `json:"type" gorm:"not null;size:10"`
	Reference         string          `json:"reference,omitempty" gorm:"size:50"`
	CheckoutRequestID *string         `json:"checkoutRequestId,omitempty" gorm:"uniqueIndex;size:100"`
	MerchantRequestID string          `json:"merchantRequestId,omitempty" gorm:"size:100"`
	Phone             string          `json:"phone,omitempty" gorm:"size:20"`
	ResultDesc        string          `json:"resultDesc,omitempty"`
	Notes             string          `json:"notes,omitempty" gorm:"type:text"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID;references:ID"`
	Unit   *Unit   `json:"unit,omitempty" gorm:"foreignKey:UnitID;references:ID"`
}

// DerivePaymentType classifies a payment from its non-zero components.
func DerivePaymentType(rent, deposit decimal.Decimal) (PaymentType, error) {
	if rent.IsNegative() || deposit.IsNegative() {
		return "", errors.New("amounts cannot be negative")
	}
	switch {
	case rent.IsPositive() && deposit.IsPositive():
		return PaymentTypeCombined, nil
	case rent.IsPositive():
		return PaymentTypeRent, nil
	case deposit.IsPositive():
		return PaymentTypeDeposit, nil
	}
	return "", ErrZeroPayment
}

// ApplyBreakdown sets Amount and Type from the rent/deposit breakdown.
func (p *Payment) ApplyBreakdown() error {
	t, err := DerivePaymentType(p.RentAmount, p.DepositAmount)
	if err != nil {
		return err
	}
	p.Type = t
	p.Amount = p.RentAmount.Add(p.DepositAmount)
	return nil
}

// MonthKey formats t as the YYYY-MM month a payment covers.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// StartOfMonth returns midnight on the first day of t's month in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
