package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"
	"kodi-rentals/app/services/mailer"
	"kodi-rentals/app/services/receipt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func GetPaymentsAPI(c *fiber.Ctx, deps *common.Deps) error {
	filters := database.PaymentFilters{
		TenantID: c.Query("tenantId"),
		Month:    c.Query("month"),
	}
	if s := c.Query("status"); s != "" {
		status, err := models.ParsePaymentStatus(s)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid payment status")
		}
		filters.Status = status
	}

	payments, err := database.GetPayments(deps.DB, common.UserID(c), filters)
	if err != nil {
		return err
	}
	return common.Success(c, payments)
}

func GetPaymentAPI(c *fiber.Ctx, deps *common.Deps) error {
	payment, err := database.GetPaymentByID(deps.DB, common.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return common.Success(c, payment)
}

// CreatePaymentAPI records a manual payment. The total and type come from the
// rent/deposit breakdown.
func CreatePaymentAPI(c *fiber.Ctx, deps *common.Deps) error {
	type CreatePaymentRequest struct {
		TenantID      string          `json:"tenantId"`
		RentAmount    decimal.Decimal `json:"rentAmount"`
		DepositAmount decimal.Decimal `json:"depositAmount"`
		Method        string          `json:"method"`
		Status        string          `json:"status"`
		Date          *time.Time      `json:"date"`
		MonthCovered  string          `json:"monthCovered"`
		Reference     string          `json:"reference"`
		Notes         string          `json:"notes"`
	}

	var req CreatePaymentRequest
	if err := common.Parse(c, &req); err != nil {
		return err
	}
	if err := common.Required(map[string]string{"tenantId": req.TenantID}); err != nil {
		return err
	}

	p := &models.Payment{
		UserID:        common.UserID(c),
		TenantID:      req.TenantID,
		RentAmount:    req.RentAmount,
		DepositAmount: req.DepositAmount,
		Method:        models.PaymentMethod(strings.ToLower(req.Method)),
		MonthCovered:  req.MonthCovered,
		Reference:     strings.TrimSpace(req.Reference),
		Notes:         req.Notes,
	}
	if p.Method == models.MethodLipaNaMpesa {
		return fiber.NewError(fiber.StatusBadRequest, "Lipa na M-Pesa payments are started with an STK push")
	}
	if req.Status != "" {
		status, err := models.ParsePaymentStatus(req.Status)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid payment status")
		}
		p.Status = status
	}
	if req.Date != nil {
		p.Date = *req.Date
	}

	if err := database.CreatePayment(deps.DB, p); err != nil {
		return err
	}

	database.LogActivity(deps.DB, deps.Logger, p.UserID, models.ActionPayment, "payment", p.ID,
		fmt.Sprintf("Recorded %s payment of %s from %s", strings.ToLower(string(p.Type)), p.Amount.StringFixed(2), p.Tenant.FullName()))

	created, err := database.GetPaymentByID(deps.DB, p.UserID, p.ID)
	if err != nil {
		return err
	}
	return common.Created(c, created)
}

func DeletePaymentAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	id := c.Params("id")
	if err := database.DeletePayment(deps.DB, userID, id); err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, userID, models.ActionDelete, "payment", id, "Deleted a payment")
	return common.Message(c, "Payment deleted")
}

func ReceiptPDFAPI(c *fiber.Ctx, deps *common.Deps) error {
	payment, err := database.GetPaymentByID(deps.DB, common.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	settings, err := deps.Settings.Get(c.UserContext())
	if err != nil {
		return err
	}

	pdf, err := receipt.Render(receipt.NewData(settings, payment))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, receipt.Filename(payment)))
	return c.Send(pdf)
}

func EmailReceiptAPI(c *fiber.Ctx, deps *common.Deps) error {
	payment, err := database.GetPaymentByID(deps.DB, common.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	if payment.Tenant == nil || strings.TrimSpace(payment.Tenant.Email) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Tenant has no email address")
	}

	delivery, err := SendReceipt(c.UserContext(), deps, payment)
	if err != nil {
		return err
	}
	return common.Success(c, fiber.Map{"delivery": delivery.Mode, "to": payment.Tenant.Email})
}

// SendReceipt renders the PDF receipt and emails it to the tenant. Payment
// must have Tenant loaded.
func SendReceipt(ctx context.Context, deps *common.Deps, payment *models.Payment) (mailer.Delivery, error) {
	settings, err := deps.Settings.Get(ctx)
	if err != nil {
		return mailer.Delivery{}, err
	}
	pdf, err := receipt.Render(receipt.NewData(settings, payment))
	if err != nil {
		return mailer.Delivery{}, err
	}

	currency := settings.Currency
	if currency == "" {
		currency = "KES"
	}
	return deps.Mailer.Send(ctx, mailer.Message{
		To:       payment.Tenant.Email,
		Subject:  "Payment receipt " + receipt.Number(payment),
		Template: "receipt",
		Data: map[string]any{
			"TenantName":    payment.Tenant.FullName(),
			"ReceiptNumber": receipt.Number(payment),
			"Currency":      currency,
			"Amount":        payment.Amount,
			"Month":         payment.MonthCovered,
			"Reference":     payment.Reference,
		},
		Attachments: []mailer.Attachment{{Name: receipt.Filename(payment), Content: pdf}},
	})
}
