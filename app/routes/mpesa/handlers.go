package mpesa

import (
	"errors"
	"fmt"
	"strings"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"
	"kodi-rentals/app/routes/payments"
	daraja "kodi-rentals/app/services/mpesa"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// STKPushAPI asks the tenant's phone to approve a payment and records it as
// pending until Safaricom calls back.
func STKPushAPI(c *fiber.Ctx, deps *common.Deps) error {
	type STKPushRequest struct {
		TenantID         string          `json:"tenantId"`
		Phone            string          `json:"phone"`
		RentAmount       decimal.Decimal `json:"rentAmount"`
		DepositAmount    decimal.Decimal `json:"depositAmount"`
		MonthCovered     string          `json:"monthCovered"`
		AccountReference string          `json:"accountReference"`
	}

	var req STKPushRequest
	if err := common.Parse(c, &req); err != nil {
		return err
	}
	if err := common.Required(map[string]string{"tenantId": req.TenantID}); err != nil {
		return err
	}

	userID := common.UserID(c)
	tenant, err := database.GetTenantByID(deps.DB, userID, req.TenantID)
	if err != nil {
		return err
	}

	payment := &models.Payment{
		UserID:        userID,
		TenantID:      tenant.ID,
		RentAmount:    req.RentAmount,
		DepositAmount: req.DepositAmount,
		Method:        models.MethodLipaNaMpesa,
		Status:        models.PaymentPending,
		MonthCovered:  req.MonthCovered,
	}
	if err := payment.ApplyBreakdown(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	phone := req.Phone
	if strings.TrimSpace(phone) == "" {
		phone = tenant.Phone
	}
	phone, err = daraja.NormalizePhone(phone)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	reference := req.AccountReference
	if reference == "" && tenant.Unit != nil {
		reference = tenant.Unit.UnitNumber
	}

	resp, err := deps.Mpesa.STKPush(c.UserContext(), daraja.STKPushRequest{
		Phone:            phone,
		Amount:           payment.Amount,
		AccountReference: reference,
		Description:      string(payment.Type),
	})
	if err != nil {
		return gatewayError(err)
	}

	checkoutID := resp.CheckoutRequestID
	payment.CheckoutRequestID = &checkoutID
	payment.MerchantRequestID = resp.MerchantRequestID
	payment.Phone = phone
	payment.ResultDesc = resp.ResponseDescription
	if err := database.CreatePayment(deps.DB, payment); err != nil {
		deps.Logger.Error("STK push accepted but payment could not be stored",
			"checkout_request_id", checkoutID, "tenant_id", tenant.ID, "error", err)
		return err
	}

	deps.Logger.Info("STK push sent", "checkout_request_id", checkoutID, "payment_id", payment.ID, "amount", payment.Amount.String())
	return common.Created(c, fiber.Map{
		"payment":           payment,
		"checkoutRequestId": checkoutID,
		"customerMessage":   resp.CustomerMessage,
	})
}

// STKStatusAPI reports a gateway payment's status. While it is still pending
// Safaricom is asked for the outcome; a definite failure is applied at once,
// success waits for the callback that carries the receipt.
func STKStatusAPI(c *fiber.Ctx, deps *common.Deps) error {
	payment, err := database.GetPaymentByCheckoutID(deps.DB, c.Params("checkoutRequestId"))
	if err != nil {
		return err
	}
	if payment.UserID != common.UserID(c) {
		return fiber.NewError(fiber.StatusNotFound, "payment not found")
	}

	result := fiber.Map{"payment": payment, "status": payment.Status}
	if payment.Status != models.PaymentPending {
		return common.Success(c, result)
	}

	query, err := deps.Mpesa.QuerySTK(c.UserContext(), *payment.CheckoutRequestID)
	if err != nil {
		deps.Logger.Warn("STK status query failed", "checkout_request_id", *payment.CheckoutRequestID, "error", err)
		result["queryError"] = err.Error()
		return common.Success(c, result)
	}
	result["resultCode"] = query.ResultCode.String()
	result["resultDesc"] = query.ResultDesc

	if code := query.ResultCode.String(); code != "" && code != "0" {
		updated, outcome, err := database.ReconcileSTKCallback(deps.DB, database.STKResult{
			CheckoutRequestID: *payment.CheckoutRequestID,
			Success:           false,
			ResultDesc:        query.ResultDesc,
		})
		if err != nil {
			return err
		}
		if outcome == database.Reconciled {
			result["payment"] = updated
			result["status"] = updated.Status
		}
	}
	return common.Success(c, result)
}

// CallbackAPI receives STK results from Safaricom. It acknowledges every
// well-formed callback, including unknown and repeated ones.
func CallbackAPI(c *fiber.Ctx, deps *common.Deps) error {
	cb, err := daraja.ParseCallback(c.Body())
	if err != nil {
		deps.Logger.Warn("rejected malformed M-Pesa callback", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result := database.STKResult{
		CheckoutRequestID: cb.CheckoutRequestID,
		Success:           cb.Succeeded(),
		ResultDesc:        cb.ResultDesc,
	}
	if cb.Succeeded() {
		amount, ok := cb.Amount()
		if ok {
			result.Amount = amount
		} else {
			deps.Logger.Warn("successful M-Pesa callback carried no amount, keeping the requested one",
				"checkout_request_id", cb.CheckoutRequestID)
		}
		result.Receipt = cb.ReceiptNumber()
		result.Phone = cb.PhoneNumber()
	}

	payment, outcome, err := database.ReconcileSTKCallback(deps.DB, result)
	if err != nil {
		deps.Logger.Error("failed to reconcile M-Pesa callback", "checkout_request_id", cb.CheckoutRequestID, "error", err)
		return err
	}

	log := deps.Logger.With("checkout_request_id", cb.CheckoutRequestID, "result_code", cb.ResultCode,
		"result_desc", cb.ResultDesc, "outcome", outcome.String())
	switch outcome {
	case database.Unmatched:
		log.Warn("M-Pesa callback matched no payment")
	case database.Duplicate:
		log.Info("M-Pesa callback already applied", "payment_id", payment.ID, "status", payment.Status)
	case database.Reconciled:
		log.Info("M-Pesa callback applied", "payment_id", payment.ID, "status", payment.Status)
		if payment.Status == models.PaymentPaid {
			onPaid(c, deps, payment)
		}
	}

	return c.JSON(daraja.Accepted)
}

func onPaid(c *fiber.Ctx, deps *common.Deps, payment *models.Payment) {
	name := "tenant"
	if payment.Tenant != nil {
		name = payment.Tenant.FullName()
	}
	database.LogActivity(deps.DB, deps.Logger, payment.UserID, models.ActionPayment, "payment", payment.ID,
		fmt.Sprintf("M-Pesa payment of %s received from %s (%s)", payment.Amount.StringFixed(2), name, payment.Reference))

	if payment.Tenant == nil || payment.Tenant.Email == "" {
		return
	}
	if _, err := payments.SendReceipt(c.UserContext(), deps, payment); err != nil {
		deps.Logger.Warn("failed to email M-Pesa receipt", "payment_id", payment.ID, "error", err)
	}
}

func gatewayError(err error) error {
	var apiErr *daraja.APIError
	switch {
	case errors.Is(err, daraja.ErrDisabled), errors.Is(err, daraja.ErrMissingCredentials), errors.Is(err, daraja.ErrInvalidPhone):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		return fiber.NewError(fiber.StatusInternalServerError, apiErr.Message)
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
