package settings

import (
	"strings"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"
	"kodi-rentals/app/services/mailer"
	"kodi-rentals/app/services/sms"

	"github.com/gofiber/fiber/v2"
)

// GetSettingsAPI returns the settings with every secret masked.
func GetSettingsAPI(c *fiber.Ctx, deps *common.Deps) error {
	s, err := database.GetSettings(deps.DB)
	if err != nil {
		return err
	}
	return common.Success(c, s.Masked())
}

// UpdateSettingsAPI replaces the settings. Secrets sent back masked or empty
// keep their stored values.
func UpdateSettingsAPI(c *fiber.Ctx, deps *common.Deps) error {
	var in models.Settings
	if err := common.Parse(c, &in); err != nil {
		return err
	}
	if err := validate(&in); err != nil {
		return err
	}

	stored, err := database.GetSettings(deps.DB)
	if err != nil {
		return err
	}
	in.KeepSecrets(*stored)
	if err := database.SaveSettings(deps.DB, &in); err != nil {
		return err
	}
	deps.Settings.Invalidate()

	userID := common.UserID(c)
	database.LogActivity(deps.DB, deps.Logger, userID, models.ActionUpdate, "settings", "", "Updated settings")
	deps.Logger.Info("settings updated", "user_id", userID,
		"smtp_enabled", in.SMTP.Enabled, "sms_enabled", in.SMS.Enabled, "mpesa_enabled", in.Mpesa.Enabled)
	return common.Success(c, in.Masked())
}

// CheckSMTPAPI checks the stored SMTP settings by connecting and sending a
// test message to the given address or the caller's own.
func CheckSMTPAPI(c *fiber.Ctx, deps *common.Deps) error {
	var req struct {
		To string `json:"to"`
	}
	if len(c.Body()) > 0 {
		if err := common.Parse(c, &req); err != nil {
			return err
		}
	}
	to := strings.TrimSpace(req.To)
	if to == "" {
		user, err := database.GetUserByID(deps.DB, common.UserID(c))
		if err != nil {
			return err
		}
		to = user.Email
	}

	if err := deps.Mailer.Verify(c.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "SMTP test failed: "+err.Error())
	}
	delivery, err := deps.Mailer.Send(c.UserContext(), mailer.Message{
		To:       to,
		Subject:  "SMTP test",
		Template: "test",
		Data:     map[string]any{"SentAt": time.Now().Format(time.RFC1123)},
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "SMTP test failed: "+err.Error())
	}
	return common.Success(c, fiber.Map{"delivery": delivery.Mode, "to": to})
}

// CheckSMSAPI sends a test text through the stored SMS settings only.
func CheckSMSAPI(c *fiber.Ctx, deps *common.Deps) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := common.Parse(c, &req); err != nil {
		return err
	}
	if err := common.Required(map[string]string{"phone": req.Phone}); err != nil {
		return err
	}

	if err := deps.SMS.Test(c.UserContext(), req.Phone, "Test message: your SMS settings are working."); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "SMS test failed: "+err.Error())
	}
	return common.Message(c, "Test SMS sent")
}

func validate(s *models.Settings) error {
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	if s.Currency == "" {
		s.Currency = "KES"
	}
	if len(s.Currency) != 3 {
		return fiber.NewError(fiber.StatusBadRequest, "Currency must be a 3-letter code")
	}

	s.SMS.Provider = strings.ToLower(strings.TrimSpace(s.SMS.Provider))
	if s.SMS.Provider != "" && s.SMS.Provider != sms.ProviderAfricasTalking && s.SMS.Provider != sms.ProviderTwilio {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown SMS provider")
	}

	s.Mpesa.Environment = strings.ToLower(strings.TrimSpace(s.Mpesa.Environment))
	switch s.Mpesa.Environment {
	case "":
		s.Mpesa.Environment = "sandbox"
	case "sandbox", "production":
	default:
		return fiber.NewError(fiber.StatusBadRequest, "M-Pesa environment must be sandbox or production")
	}
	if s.SMTP.Port < 0 || s.SMTP.Port > 65535 {
		return fiber.NewError(fiber.StatusBadRequest, "SMTP port is out of range")
	}
	return nil
}
