package reminders

import (
	"errors"
	"strings"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"
	"kodi-rentals/app/services"

	"github.com/gofiber/fiber/v2"
)

func GetRemindersAPI(c *fiber.Ctx, deps *common.Deps) error {
	reminders, err := database.GetReminders(deps.DB, common.UserID(c))
	if err != nil {
		return err
	}
	return common.Success(c, reminders)
}

// CreateReminderAPI schedules a reminder. It fires once, on the first
// scheduler pass at or after its due date.
func CreateReminderAPI(c *fiber.Ctx, deps *common.Deps) error {
	var r models.Reminder
	if err := common.Parse(c, &r); err != nil {
		return err
	}

	r.Title = strings.TrimSpace(r.Title)
	if err := common.Required(map[string]string{
		"title":  r.Title,
		"type":   string(r.Type),
		"method": string(r.Method),
	}); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder type")
	}
	if !r.Method.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder method")
	}
	if r.Frequency != "" && !r.Frequency.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder frequency")
	}
	if r.DueDate.IsZero() {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: dueDate")
	}

	r.ID = ""
	r.UserID = common.UserID(c)
	r.Recipients, r.Failures = 0, 0
	if err := database.CreateReminder(deps.DB, &r); err != nil {
		return err
	}

	database.LogActivity(deps.DB, deps.Logger, r.UserID, models.ActionCreate, "reminder", r.ID, "Scheduled reminder "+r.Title)
	return common.Created(c, r)
}

func DeleteReminderAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	id := c.Params("id")
	if err := database.DeleteReminder(deps.DB, userID, id); err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, userID, models.ActionDelete, "reminder", id, "Deleted a reminder")
	return common.Message(c, "Reminder deleted")
}

// RunRemindersAPI triggers a scheduler pass now.
func RunRemindersAPI(c *fiber.Ctx, deps *common.Deps) error {
	result, err := deps.Reminders.RunOnce(c.UserContext())
	if errors.Is(err, services.ErrPassRunning) {
		return fiber.NewError(fiber.StatusConflict, "A reminder pass is already running")
	}
	if err != nil {
		return err
	}
	return common.Success(c, result)
}
