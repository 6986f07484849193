// Package common holds what every route package shares: dependencies, the
// JSON envelope, request helpers and the API error handler.
package common

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"kodi-rentals/app/config"
	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/services"
	"kodi-rentals/app/services/mailer"
	"kodi-rentals/app/services/mpesa"
	"kodi-rentals/app/services/sms"
	"kodi-rentals/app/services/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Mailer sends and verifies email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) (mailer.Delivery, error)
	Verify(ctx context.Context) error
}

// SMS sends text messages.
type SMS interface {
	Send(ctx context.Context, phone, text string) (sms.Delivery, error)
	Test(ctx context.Context, phone, text string) error
}

// Mpesa starts and queries STK pushes.
type Mpesa interface {
	STKPush(ctx context.Context, in mpesa.STKPushRequest) (*mpesa.STKPushResponse, error)
	QuerySTK(ctx context.Context, checkoutRequestID string) (*mpesa.STKQueryResponse, error)
}

// ReminderRunner runs a reminder pass on demand.
type ReminderRunner interface {
	RunOnce(ctx context.Context) (services.PassResult, error)
}

// Deps is handed to every SetupXRoutes function.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Logger    *slog.Logger
	Settings  *services.SettingsProvider
	Mailer    Mailer
	SMS       SMS
	Mpesa     Mpesa
	Reminders ReminderRunner
	Storage   storage.Blob
}

// Success writes {"success":true,"data":...}.
func Success(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// Created is Success with 201.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

// Message writes {"success":true,"message":...}.
func Message(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"success": true, "message": msg})
}

// UserID returns the authenticated account ID.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// UserRole returns the authenticated account role.
func UserRole(c *fiber.Ctx) models.UserRole {
	role, _ := c.Locals("user_role").(models.UserRole)
	return role
}

// Parse decodes the body into v or fails with 400.
func Parse(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// Required fails with 400 naming every empty field.
func Required(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
}

// QueryInt reads an integer query parameter, falling back to def.
func QueryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// ErrorHandler renders every error as {"success":false,"error":...,"code":...}
// and maps store errors onto HTTP statuses.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, msg := Status(err)
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   msg,
			"code":    code,
		})
	}
}

// Status picks the HTTP status and client message for err.
func Status(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, database.ErrNotFound):
		return fiber.StatusNotFound, strings.TrimSuffix(err.Error(), ": "+database.ErrNotFound.Error()) + " not found"
	case errors.Is(err, database.ErrConflict):
		return fiber.StatusConflict, strings.TrimSuffix(err.Error(), ": "+database.ErrConflict.Error())
	case errors.Is(err, database.ErrInvalid):
		return fiber.StatusBadRequest, strings.TrimPrefix(strings.TrimSuffix(err.Error(), ": "+database.ErrInvalid.Error()), "invalid: ")
	}
	return fiber.StatusInternalServerError, "Internal server error"
}
