package properties

import (
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupPropertiesRoutes(api fiber.Router, deps *common.Deps) {
	properties := api.Group("/properties")
	properties.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	properties.Get("/", func(c *fiber.Ctx) error { return GetPropertiesAPI(c, deps) })
	properties.Post("/", func(c *fiber.Ctx) error { return CreatePropertyAPI(c, deps) })
	properties.Get("/:id", func(c *fiber.Ctx) error { return GetPropertyAPI(c, deps) })
	properties.Put("/:id", func(c *fiber.Ctx) error { return UpdatePropertyAPI(c, deps) })
	properties.Delete("/:id", func(c *fiber.Ctx) error { return DeletePropertyAPI(c, deps) })
}
