package expenses

import (
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupExpensesRoutes(api fiber.Router, deps *common.Deps) {
	expenses := api.Group("/expenses")
	expenses.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	expenses.Get("/", func(c *fiber.Ctx) error { return GetExpensesAPI(c, deps) })
	expenses.Post("/", func(c *fiber.Ctx) error { return CreateExpenseAPI(c, deps) })
	expenses.Put("/:id", func(c *fiber.Ctx) error { return UpdateExpenseAPI(c, deps) })
	expenses.Delete("/:id", func(c *fiber.Ctx) error { return DeleteExpenseAPI(c, deps) })

	categories := api.Group("/expense-categories")
	categories.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	categories.Get("/", func(c *fiber.Ctx) error { return GetCategoriesAPI(c, deps) })
	categories.Post("/", func(c *fiber.Ctx) error { return CreateCategoryAPI(c, deps) })
	categories.Put("/:id", func(c *fiber.Ctx) error { return UpdateCategoryAPI(c, deps) })
	categories.Delete("/:id", func(c *fiber.Ctx) error { return DeleteCategoryAPI(c, deps) })
}
