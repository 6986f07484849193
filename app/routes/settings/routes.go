package settings

import (
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupSettingsRoutes(api fiber.Router, deps *common.Deps) {
	settings := api.Group("/settings")
	settings.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	settings.Get("/", func(c *fiber.Ctx) error { return GetSettingsAPI(c, deps) })

	adminOnly := auth.RoleMiddleware(models.RoleAdmin)
	settings.Put("/", adminOnly, func(c *fiber.Ctx) error { return UpdateSettingsAPI(c, deps) })
	settings.Post("/test-smtp", adminOnly, func(c *fiber.Ctx) error { return CheckSMTPAPI(c, deps) })
	settings.Post("/test-sms", adminOnly, func(c *fiber.Ctx) error { return CheckSMSAPI(c, deps) })
}
