package units

import (
	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func GetUnitsAPI(c *fiber.Ctx, deps *common.Deps) error {
	units, err := database.GetAllUnits(deps.DB, common.UserID(c), c.Query("propertyId"))
	if err != nil {
		return err
	}
	return common.Success(c, units)
}

func GetUnitAPI(c *fiber.Ctx, deps *common.Deps) error {
	unit, err := database.GetUnitByID(deps.DB, common.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return common.Success(c, unit)
}

// CreateUnitAPI adds a unit. Units always start vacant (or under
// maintenance); occupancy follows tenants.
func CreateUnitAPI(c *fiber.Ctx, deps *common.Deps) error {
	var u models.Unit
	if err := common.Parse(c, &u); err != nil {
		return err
	}
	if err := validate(&u); err != nil {
		return err
	}
	if err := common.Required(map[string]string{"propertyId": u.PropertyID}); err != nil {
		return err
	}

	u.ID = ""
	u.UserID = common.UserID(c)
	u.Property = nil
	if err := database.CreateUnit(deps.DB, &u); err != nil {
		return err
	}

	database.LogActivity(deps.DB, deps.Logger, u.UserID, models.ActionCreate, "unit", u.ID, "Added unit "+u.UnitNumber)
	return common.Created(c, u)
}

func UpdateUnitAPI(c *fiber.Ctx, deps *common.Deps) error {
	var u models.Unit
	if err := common.Parse(c, &u); err != nil {
		return err
	}
	if err := validate(&u); err != nil {
		return err
	}

	u.ID = c.Params("id")
	u.UserID = common.UserID(c)
	u.Property = nil
	if err := database.UpdateUnit(deps.DB, &u); err != nil {
		return err
	}

	database.LogActivity(deps.DB, deps.Logger, u.UserID, models.ActionUpdate, "unit", u.ID, "Updated unit "+u.UnitNumber)
	return common.Success(c, u)
}

func DeleteUnitAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	id := c.Params("id")
	if err := database.DeleteUnit(deps.DB, userID, id); err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, userID, models.ActionDelete, "unit", id, "Deleted a unit")
	return common.Message(c, "Unit deleted")
}

func validate(u *models.Unit) error {
	if err := common.Required(map[string]string{"unitNumber": u.UnitNumber}); err != nil {
		return err
	}
	if u.Status != "" && !u.Status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid unit status")
	}
	if u.RentAmount.IsNegative() || u.DepositAmount.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "Amounts cannot be negative")
	}
	return nil
}
