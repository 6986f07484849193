// Package routes mounts every API route group on the Fiber app.
package routes

import (
	"kodi-rentals/app/routes/activity"
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"
	"kodi-rentals/app/routes/dashboard"
	"kodi-rentals/app/routes/documents"
	"kodi-rentals/app/routes/expenses"
	"kodi-rentals/app/routes/mpesa"
	"kodi-rentals/app/routes/payments"
	"kodi-rentals/app/routes/properties"
	"kodi-rentals/app/routes/reminders"
	"kodi-rentals/app/routes/settings"
	"kodi-rentals/app/routes/tenants"
	"kodi-rentals/app/routes/units"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, deps *common.Deps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth.SetupAuthRoutes(api, deps)
	dashboard.SetupDashboardRoutes(api, deps)
	properties.SetupPropertiesRoutes(api, deps)
	units.SetupUnitsRoutes(api, deps)
	tenants.SetupTenantsRoutes(api, deps)
	payments.SetupPaymentsRoutes(api, deps)
	mpesa.SetupMpesaRoutes(api, deps)
	reminders.SetupRemindersRoutes(api, deps)
	expenses.SetupExpensesRoutes(api, deps)
	documents.SetupDocumentsRoutes(api, deps)
	activity.SetupActivityRoutes(api, deps)
	settings.SetupSettingsRoutes(api, deps)

	// Catch-all for unknown API paths (must be last)
	api.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route not found")
	})
}
