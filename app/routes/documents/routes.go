package documents

import (
	"kodi-rentals/app/routes/auth"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupDocumentsRoutes(api fiber.Router, deps *common.Deps) {
	documents := api.Group("/documents")
	documents.Use(auth.AuthMiddleware(deps.Config.JWT.Secret))

	documents.Get("/", func(c *fiber.Ctx) error { return GetDocumentsAPI(c, deps) })
	documents.Post("/", func(c *fiber.Ctx) error { return UploadDocumentAPI(c, deps) })
	documents.Get("/:id/download", func(c *fiber.Ctx) error { return DownloadDocumentAPI(c, deps) })
	documents.Delete("/:id", func(c *fiber.Ctx) error { return DeleteDocumentAPI(c, deps) })
}
