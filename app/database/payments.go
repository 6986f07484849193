package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kodi-rentals/app/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentFilters narrows a payment listing.
type PaymentFilters struct {
	TenantID string
	Status   models.PaymentStatus
	Month    string // YYYY-MM
}

func GetPayments(db *gorm.DB, userID string, f PaymentFilters) ([]*models.Payment, error) {
	q := db.Scopes(owned(userID)).Preload("Tenant").Preload("Unit.Property")
	if f.TenantID != "" {
		q = q.Where("tenant_id = ?", f.TenantID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Month != "" {
		q = q.Where("month_covered = ?", f.Month)
	}

	payments := []*models.Payment{}
	if err := q.Order("date DESC, created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func GetPaymentByID(db *gorm.DB, userID, id string) (*models.Payment, error) {
	p := &models.Payment{}
	err := db.Scopes(owned(userID)).Preload("Tenant").Preload("Unit.Property").Where("id = ?", id).First(p).Error
	if err != nil {
		return nil, translate(err, "payment")
	}
	return p, nil
}

// GetPaymentByCheckoutID looks up a payment by its gateway correlation key,
// regardless of owner.
func GetPaymentByCheckoutID(db *gorm.DB, checkoutRequestID string) (*models.Payment, error) {
	p := &models.Payment{}
	err := db.Preload("Tenant").Preload("Unit.Property").
		Where("checkout_request_id = ?", checkoutRequestID).First(p).Error
	if err != nil {
		return nil, translate(err, "payment")
	}
	return p, nil
}

// CreatePayment validates the breakdown, fills defaults and stores the payment.
// Gateway payments start pending; everything else is recorded as paid unless
// the caller chose partial or overdue.
func CreatePayment(db *gorm.DB, p *models.Payment) error {
	if err := p.ApplyBreakdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if p.Method == "" {
		p.Method = models.MethodCash
	}
	if !p.Method.Valid() {
		return invalid("unknown payment method %q", p.Method)
	}
	if p.Status == "" {
		if p.Method == models.MethodLipaNaMpesa {
			p.Status = models.PaymentPending
		} else {
			p.Status = models.PaymentPaid
		}
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	p.Date = p.Date.UTC()
	if p.MonthCovered == "" {
		p.MonthCovered = models.MonthKey(p.Date)
	} else if _, err := time.Parse("2006-01", p.MonthCovered); err != nil {
		return invalid("monthCovered must be YYYY-MM, got %q", p.MonthCovered)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		tenant, err := GetTenantByID(tx, p.UserID, p.TenantID)
		if err != nil {
			return err
		}
		if p.UnitID == nil {
			p.UnitID = tenant.UnitID
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		p.Tenant = tenant
		return nil
	})
}

func DeletePayment(db *gorm.DB, userID, id string) error {
	res := db.Scopes(owned(userID)).Delete(&models.Payment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment: %w", ErrNotFound)
	}
	return nil
}

// HasQualifyingPaymentSince reports whether a tenant has a paid or partial
// payment dated on or after since.
func HasQualifyingPaymentSince(db *gorm.DB, tenantID string, since time.Time) (bool, error) {
	var n int64
	err := db.Model(&models.Payment{}).
		Where("tenant_id = ? AND status IN ? AND date >= ?", tenantID,
			[]models.PaymentStatus{models.PaymentPaid, models.PaymentPartial}, since.UTC()).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check payments: %w", err)
	}
	return n > 0, nil
}

// STKResult is the part of a gateway callback the reconciler acts on.
type STKResult struct {
	CheckoutRequestID string
	Success           bool
	ResultDesc        string
	Amount            decimal.Decimal
	Receipt           string
	Phone             string
}

// ReconcileOutcome says what a callback did to the payment store.
type ReconcileOutcome int

const (
	// Reconciled means a pending payment moved to paid or failed.
	Reconciled ReconcileOutcome = iota
	// Duplicate means the payment had already left pending; nothing changed.
	Duplicate
	// Unmatched means no payment carries the checkout request ID.
	Unmatched
)

func (o ReconcileOutcome) String() string {
	switch o {
	case Reconciled:
		return "reconciled"
	case Duplicate:
		return "duplicate"
	default:
		return "unmatched"
	}
}

// ReconcileSTKCallback applies a gateway result to the pending payment it
// correlates with. The write is conditional on the payment still being
// pending, so redelivered callbacks change nothing. Only pending payments
// take part in the pending -> paid / pending -> failed transitions.
//
// Success sets status plus whichever of amount, reference and phone the
// callback carried; a missing amount keeps the one requested. Failure sets
// status only.
func ReconcileSTKCallback(db *gorm.DB, r STKResult) (*models.Payment, ReconcileOutcome, error) {
	if strings.TrimSpace(r.CheckoutRequestID) == "" {
		return nil, Unmatched, errors.New("callback has no CheckoutRequestID")
	}

	var (
		payment *models.Payment
		outcome ReconcileOutcome
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		p := &models.Payment{}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("checkout_request_id = ?", r.CheckoutRequestID).First(p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = Unmatched
			return nil
		}
		if err != nil {
			return fmt.Errorf("find payment: %w", err)
		}
		payment = p

		if p.Status != models.PaymentPending {
			outcome = Duplicate
			return nil
		}

		updates := map[string]any{"status": models.PaymentFailed}
		if r.Success {
			updates = map[string]any{"status": models.PaymentPaid}
			if r.Amount.IsPositive() {
				updates["amount"] = r.Amount
			}
			if r.Receipt != "" {
				updates["reference"] = r.Receipt
			}
			if r.Phone != "" {
				updates["phone"] = r.Phone
			}
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", p.ID, models.PaymentPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			outcome = Duplicate
			return nil
		}
		outcome = Reconciled
		return tx.Preload("Tenant").Preload("Unit.Property").Where("id = ?", p.ID).First(payment).Error
	})
	if err != nil {
		return nil, Unmatched, err
	}
	return payment, outcome, nil
}
