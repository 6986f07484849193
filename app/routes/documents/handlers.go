package documents

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"
	"kodi-rentals/app/services/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxDocumentSize = 10 << 20

func GetDocumentsAPI(c *fiber.Ctx, deps *common.Deps) error {
	docs, err := database.GetDocuments(deps.DB, common.UserID(c), c.Query("tenantId"), c.Query("propertyId"))
	if err != nil {
		return err
	}
	return common.Success(c, docs)
}

// UploadDocumentAPI stores a multipart "file" in blob storage and records it,
// optionally attached to a tenant and/or property.
func UploadDocumentAPI(c *fiber.Ctx, deps *common.Deps) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: file")
	}
	if fh.Size > maxDocumentSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File is larger than 10 MB")
	}

	data, err := readUpload(fh)
	if err != nil {
		return err
	}

	doc := &models.Document{
		UserID:      common.UserID(c),
		TenantID:    optional(c.FormValue("tenantId")),
		PropertyID:  optional(c.FormValue("propertyId")),
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		StorageKey:  "documents/" + uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename)),
	}
	if doc.ContentType == "" {
		doc.ContentType = fiber.MIMEOctetStream
	}

	if err := deps.Storage.Put(c.UserContext(), doc.StorageKey, data, doc.ContentType); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	if err := database.CreateDocument(deps.DB, doc); err != nil {
		if derr := deps.Storage.Delete(c.UserContext(), doc.StorageKey); derr != nil {
			deps.Logger.Warn("failed to remove orphaned document blob", "key", doc.StorageKey, "error", derr)
		}
		return err
	}

	database.LogActivity(deps.DB, deps.Logger, doc.UserID, models.ActionCreate, "document", doc.ID, "Uploaded "+doc.Name)
	return common.Created(c, doc)
}

func DownloadDocumentAPI(c *fiber.Ctx, deps *common.Deps) error {
	doc, err := database.GetDocumentByID(deps.DB, common.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	body, err := deps.Storage.Get(c.UserContext(), doc.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "document file not found")
	}
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.Name))
	return c.Send(data)
}

// DeleteDocumentAPI removes the record first; a blob left behind is only logged.
func DeleteDocumentAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	doc, err := database.GetDocumentByID(deps.DB, userID, c.Params("id"))
	if err != nil {
		return err
	}
	if err := database.DeleteDocument(deps.DB, userID, doc.ID); err != nil {
		return err
	}
	if err := deps.Storage.Delete(c.UserContext(), doc.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		deps.Logger.Warn("failed to delete document blob", "key", doc.StorageKey, "error", err)
	}

	database.LogActivity(deps.DB, deps.Logger, userID, models.ActionDelete, "document", doc.ID, "Deleted "+doc.Name)
	return common.Message(c, "Document deleted")
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file")
	}
	defer f.Close()
	return io.ReadAll(f)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
