package tenants

import (
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupTenantsRoutes(api fiber.Router, deps *common.Deps) {
	tenants := api.Group("/tenants")
	tenants.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	tenants.Get("/", func(c *fiber.Ctx) error { return GetTenantsAPI(c, deps) })
	tenants.Post("/", func(c *fiber.Ctx) error { return CreateTenantAPI(c, deps) })
	tenants.Get("/:id", func(c *fiber.Ctx) error { return GetTenantAPI(c, deps) })
	tenants.Put("/:id", func(c *fiber.Ctx) error { return UpdateTenantAPI(c, deps) })
	tenants.Delete("/:id", func(c *fiber.Ctx) error { return DeleteTenantAPI(c, deps) })
	tenants.Get("/:id/payments", func(c *fiber.Ctx) error { return GetTenantPaymentsAPI(c, deps) })
}
