// Package receipt draws PDF payment receipts.
package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"kodi-rentals/app/models"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Data is everything printed on a receipt. Payment should have Tenant and
// Unit.Property loaded; missing relations print as "-".
type Data struct {
	CompanyName  string
	CompanyEmail string
	CompanyPhone string
	Currency     string
	Payment      *models.Payment
	IssuedAt     time.Time
}

func NewData(s models.Settings, p *models.Payment) Data {
	return Data{
		CompanyName:  s.CompanyName,
		CompanyEmail: s.CompanyEmail,
		CompanyPhone: s.CompanyPhone,
		Currency:     s.Currency,
		Payment:      p,
		IssuedAt:     time.Now(),
	}
}

// Number is the human-facing receipt number derived from the payment ID.
func Number(p *models.Payment) string {
	id := strings.ReplaceAll(p.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "RCT-" + strings.ToUpper(id)
}

// Filename is the attachment/download name for a payment's receipt.
func Filename(p *models.Payment) string {
	return strings.ToLower(Number(p)) + ".pdf"
}

// Render returns the receipt as an A4 PDF.
func Render(d Data) ([]byte, error) {
	p := d.Payment
	if p == nil {
		return nil, errors.New("receipt needs a payment")
	}
	company := d.CompanyName
	if company == "" {
		company = "Kodi Rentals"
	}
	currency := d.Currency
	if currency == "" {
		currency = "KES"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+Number(p), false)
	pdf.SetCreator(company, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(11, 110, 79)
	pdf.CellFormat(0, 10, company, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	for _, line := range []string{d.CompanyEmail, d.CompanyPhone} {
		if line != "" {
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(95, 8, "PAYMENT RECEIPT", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(95, 8, Number(p), "", 1, "R", false, 0, "")
	issued := d.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	pdf.CellFormat(0, 6, "Issued "+issued.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	tenant, unit, property := "-", "-", "-"
	if p.Tenant != nil {
		tenant = p.Tenant.FullName()
	}
	if p.Unit != nil {
		unit = p.Unit.UnitNumber
		if p.Unit.Property != nil {
			property = p.Unit.Property.Name
		}
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}
	row("Tenant", tenant)
	row("Property", property)
	row("Unit", unit)
	row("Payment date", p.Date.Format("02 Jan 2006"))
	row("Month covered", p.MonthCovered)
	row("Method", methodLabel(p.Method))
	if p.Reference != "" {
		row("Reference", p.Reference)
	}
	row("Status", strings.ToUpper(string(p.Status)))
	pdf.Ln(6)

	// Breakdown
	pdf.SetFillColor(240, 244, 242)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Amount ("+currency+")", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if p.RentAmount.IsPositive() {
		pdf.CellFormat(130, 8, "Rent", "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, money(p.RentAmount), "1", 1, "R", false, 0, "")
	}
	if p.DepositAmount.IsPositive() {
		pdf.CellFormat(130, 8, "Deposit", "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, money(p.DepositAmount), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 8, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, money(p.Amount), "1", 1, "R", true, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "Thank you for your payment.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func methodLabel(m models.PaymentMethod) string {
	switch m {
	case models.MethodLipaNaMpesa:
		return "Lipa na M-Pesa"
	case models.MethodMobileMoney:
		return "Mobile money"
	case models.MethodBank:
		return "Bank transfer"
	case models.MethodCash:
		return "Cash"
	}
	return string(m)
}
