package units

import (
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupUnitsRoutes(api fiber.Router, deps *common.Deps) {
	units := api.Group("/units")
	units.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	units.Get("/", func(c *fiber.Ctx) error { return GetUnitsAPI(c, deps) })
	units.Post("/", func(c *fiber.Ctx) error { return CreateUnitAPI(c, deps) })
	units.Get("/:id", func(c *fiber.Ctx) error { return GetUnitAPI(c, deps) })
	units.Put("/:id", func(c *fiber.Ctx) error { return UpdateUnitAPI(c, deps) })
	units.Delete("/:id", func(c *fiber.Ctx) error { return DeleteUnitAPI(c, deps) })
}
