package mpesa

import (
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupMpesaRoutes(api fiber.Router, deps *common.Deps) {
	mpesa := api.Group("/mpesa")

	// Public route: Safaricom posts STK results here
	mpesa.Post("/callback", func(c *fiber.Ctx) error { return CallbackAPI(c, deps) })

	mpesa.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))
	mpesa.Post("/stk-push", func(c *fiber.Ctx) error { return STKPushAPI(c, deps) })
	mpesa.Get("/status/:checkoutRequestId", func(c *fiber.Ctx) error { return STKStatusAPI(c, deps) })
}
