package payments

import (
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentsRoutes(api fiber.Router, deps *common.Deps) {
	payments := api.Group("/payments")
	payments.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	payments.Get("/", func(c *fiber.Ctx) error { return GetPaymentsAPI(c, deps) })
	payments.Post("/", func(c *fiber.Ctx) error { return CreatePaymentAPI(c, deps) })
	payments.Get("/:id", func(c *fiber.Ctx) error { return GetPaymentAPI(c, deps) })
	payments.Delete("/:id", func(c *fiber.Ctx) error { return DeletePaymentAPI(c, deps) })
	payments.Get("/:id/pdf", func(c *fiber.Ctx) error { return ReceiptPDFAPI(c, deps) })
	payments.Post("/:id/email", func(c *fiber.Ctx) error { return EmailReceiptAPI(c, deps) })
}
