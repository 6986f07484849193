package dashboard

import (
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(api fiber.Router, deps *common.Deps) {
	dashboard := api.Group("/dashboard")
	dashboard.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	dashboard.Get("/stats", func(c *fiber.Ctx) error { return GetDashboardStatsAPI(c, deps) })
}

// GetDashboardStatsAPI returns dashboard statistics as JSON
func GetDashboardStatsAPI(c *fiber.Ctx, deps *common.Deps) error {
	stats, err := database.GetDashboardStats(deps.DB, common.UserID(c), time.Now())
	if err != nil {
		return err
	}
	return common.Success(c, stats)
}
