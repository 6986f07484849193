package activity

import (
	"kodi-rentals/app/database"
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupActivityRoutes(api fiber.Router, deps *common.Deps) {
	activity := api.Group("/activity")
	activity.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	activity.Get("/", func(c *fiber.Ctx) error { return GetActivityAPI(c, deps) })
}

// GetActivityAPI lists the caller's most recent activity, newest first.
func GetActivityAPI(c *fiber.Ctx, deps *common.Deps) error {
	activities, err := database.GetActivities(deps.DB, common.UserID(c), common.QueryInt(c, "limit", 50))
	if err != nil {
		return err
	}
	return common.Success(c, activities)
}
