package reminders

import (
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupRemindersRoutes(api fiber.Router, deps *common.Deps) {
	reminders := api.Group("/reminders")
	reminders.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	reminders.Get("/", func(c *fiber.Ctx) error { return GetRemindersAPI(c, deps) })
	reminders.Post("/", func(c *fiber.Ctx) error { return CreateReminderAPI(c, deps) })
	reminders.Post("/run", auth.RoleMiddleware(models.RoleAdmin), func(c *fiber.Ctx) error { return RunRemindersAPI(c, deps) })
	reminders.Delete("/:id", func(c *fiber.Ctx) error { return DeleteReminderAPI(c, deps) })
}
