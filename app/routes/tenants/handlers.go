package tenants

import (
	"net/mail"
	"strings"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func GetTenantsAPI(c *fiber.Ctx, deps *common.Deps) error {
	status := models.TenantStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid tenant status")
	}
	tenants, err := database.GetAllTenants(deps.DB, common.UserID(c), status)
	if err != nil {
		return err
	}
	return common.Success(c, tenants)
}

func GetTenantAPI(c *fiber.Ctx, deps *common.Deps) error {
	tenant, err := database.GetTenantByID(deps.DB, common.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return common.Success(c, tenant)
}

// CreateTenantAPI stores a tenant; an active tenant with a unit occupies it.
func CreateTenantAPI(c *fiber.Ctx, deps *common.Deps) error {
	var t models.Tenant
	if err := common.Parse(c, &t); err != nil {
		return err
	}
	if err := validate(&t); err != nil {
		return err
	}

	t.ID = ""
	t.UserID = common.UserID(c)
	if err := database.CreateTenant(deps.DB, &t); err != nil {
		return err
	}

	created, err := database.GetTenantByID(deps.DB, t.UserID, t.ID)
	if err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, t.UserID, models.ActionCreate, "tenant", t.ID, "Added tenant "+t.FullName())
	return common.Created(c, created)
}

// UpdateTenantAPI edits a tenant, including moving units or ending the tenancy.
func UpdateTenantAPI(c *fiber.Ctx, deps *common.Deps) error {
	var t models.Tenant
	if err := common.Parse(c, &t); err != nil {
		return err
	}
	if err := validate(&t); err != nil {
		return err
	}

	t.ID = c.Params("id")
	t.UserID = common.UserID(c)
	if err := database.UpdateTenant(deps.DB, &t); err != nil {
		return err
	}

	updated, err := database.GetTenantByID(deps.DB, t.UserID, t.ID)
	if err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, t.UserID, models.ActionUpdate, "tenant", t.ID, "Updated tenant "+t.FullName())
	return common.Success(c, updated)
}

func DeleteTenantAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	deleted, err := database.DeleteTenant(deps.DB, userID, c.Params("id"))
	if err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, userID, models.ActionDelete, "tenant", deleted.ID, "Removed tenant "+deleted.FullName())
	return common.Message(c, "Tenant deleted")
}

func GetTenantPaymentsAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	tenant, err := database.GetTenantByID(deps.DB, userID, c.Params("id"))
	if err != nil {
		return err
	}
	payments, err := database.GetPayments(deps.DB, userID, database.PaymentFilters{TenantID: tenant.ID})
	if err != nil {
		return err
	}
	return common.Success(c, payments)
}

func validate(t *models.Tenant) error {
	if err := common.Required(map[string]string{"firstName": t.FirstName}); err != nil {
		return err
	}
	if t.Status != "" && !t.Status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid tenant status")
	}
	t.Email = strings.TrimSpace(t.Email)
	if t.Email != "" {
		if _, err := mail.ParseAddress(t.Email); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid email address")
		}
	}
	if t.UnitID != nil && strings.TrimSpace(*t.UnitID) == "" {
		t.UnitID = nil
	}
	if t.RentAmount.IsNegative() || t.DepositPaid.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "Amounts cannot be negative")
	}
	t.Unit = nil
	return nil
}
