package properties

import (
	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func GetPropertiesAPI(c *fiber.Ctx, deps *common.Deps) error {
	properties, err := database.GetAllProperties(deps.DB, common.UserID(c))
	if err != nil {
		return err
	}
	return common.Success(c, properties)
}

// GetPropertyAPI returns the property together with its units.
func GetPropertyAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	property, err := database.GetPropertyByID(deps.DB, userID, c.Params("id"))
	if err != nil {
		return err
	}
	units, err := database.GetAllUnits(deps.DB, userID, property.ID)
	if err != nil {
		return err
	}
	return common.Success(c, fiber.Map{"property": property, "units": units})
}

func CreatePropertyAPI(c *fiber.Ctx, deps *common.Deps) error {
	var p models.Property
	if err := common.Parse(c, &p); err != nil {
		return err
	}
	if err := validate(&p); err != nil {
		return err
	}

	p.ID = ""
	p.UserID = common.UserID(c)
	if err := database.CreateProperty(deps.DB, &p); err != nil {
		return err
	}

	database.LogActivity(deps.DB, deps.Logger, p.UserID, models.ActionCreate, "property", p.ID, "Added property "+p.Name)
	return common.Created(c, p)
}

func UpdatePropertyAPI(c *fiber.Ctx, deps *common.Deps) error {
	var p models.Property
	if err := common.Parse(c, &p); err != nil {
		return err
	}
	if err := validate(&p); err != nil {
		return err
	}

	p.ID = c.Params("id")
	p.UserID = common.UserID(c)
	if p.Type == "" {
		p.Type = models.PropertyApartment
	}
	if err := database.UpdateProperty(deps.DB, &p); err != nil {
		return err
	}

	updated, err := database.GetPropertyByID(deps.DB, p.UserID, p.ID)
	if err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, p.UserID, models.ActionUpdate, "property", p.ID, "Updated property "+p.Name)
	return common.Success(c, updated)
}

func DeletePropertyAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	id := c.Params("id")
	if err := database.DeleteProperty(deps.DB, userID, id); err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, userID, models.ActionDelete, "property", id, "Deleted a property")
	return common.Message(c, "Property deleted")
}

func validate(p *models.Property) error {
	if err := common.Required(map[string]string{"name": p.Name}); err != nil {
		return err
	}
	if p.Type != "" && !p.Type.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid property type")
	}
	return nil
}
