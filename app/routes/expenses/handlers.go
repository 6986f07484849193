package expenses

import (
	"strings"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func GetExpensesAPI(c *fiber.Ctx, deps *common.Deps) error {
	expenses, err := database.GetAllExpenses(deps.DB, common.UserID(c), c.Query("propertyId"))
	if err != nil {
		return err
	}
	return common.Success(c, expenses)
}

func CreateExpenseAPI(c *fiber.Ctx, deps *common.Deps) error {
	var e models.Expense
	if err := common.Parse(c, &e); err != nil {
		return err
	}
	if err := validateExpense(&e); err != nil {
		return err
	}

	e.ID = ""
	e.UserID = common.UserID(c)
	if err := database.CreateExpense(deps.DB, &e); err != nil {
		return err
	}

	database.LogActivity(deps.DB, deps.Logger, e.UserID, models.ActionCreate, "expense", e.ID,
		"Recorded expense "+e.Title+" of "+e.Amount.StringFixed(2))
	return common.Created(c, e)
}

func UpdateExpenseAPI(c *fiber.Ctx, deps *common.Deps) error {
	var e models.Expense
	if err := common.Parse(c, &e); err != nil {
		return err
	}
	if err := validateExpense(&e); err != nil {
		return err
	}

	e.ID = c.Params("id")
	e.UserID = common.UserID(c)
	if e.Currency == "" {
		e.Currency = "KES"
	}
	if err := database.UpdateExpense(deps.DB, &e); err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, e.UserID, models.ActionUpdate, "expense", e.ID, "Updated expense "+e.Title)
	return common.Success(c, e)
}

func DeleteExpenseAPI(c *fiber.Ctx, deps *common.Deps) error {
	userID := common.UserID(c)
	id := c.Params("id")
	if err := database.DeleteExpense(deps.DB, userID, id); err != nil {
		return err
	}
	database.LogActivity(deps.DB, deps.Logger, userID, models.ActionDelete, "expense", id, "Deleted an expense")
	return common.Message(c, "Expense deleted")
}

func GetCategoriesAPI(c *fiber.Ctx, deps *common.Deps) error {
	categories, err := database.GetAllCategories(deps.DB, common.UserID(c))
	if err != nil {
		return err
	}
	return common.Success(c, categories)
}

func CreateCategoryAPI(c *fiber.Ctx, deps *common.Deps) error {
	var cat models.ExpenseCategory
	if err := common.Parse(c, &cat); err != nil {
		return err
	}
	cat.Name = strings.TrimSpace(cat.Name)
	if err := common.Required(map[string]string{"name": cat.Name}); err != nil {
		return err
	}

	cat.ID = ""
	cat.UserID = common.UserID(c)
	cat.IsActive = true
	if err := database.CreateCategory(deps.DB, &cat); err != nil {
		return err
	}
	return common.Created(c, cat)
}

func UpdateCategoryAPI(c *fiber.Ctx, deps *common.Deps) error {
	var cat models.ExpenseCategory
	if err := common.Parse(c, &cat); err != nil {
		return err
	}
	cat.Name = strings.TrimSpace(cat.Name)
	if err := common.Required(map[string]string{"name": cat.Name}); err != nil {
		return err
	}

	cat.ID = c.Params("id")
	cat.UserID = common.UserID(c)
	if err := database.UpdateCategory(deps.DB, &cat); err != nil {
		return err
	}
	return common.Success(c, cat)
}

// DeleteCategoryAPI refuses with 409 while expenses still use the category.
func DeleteCategoryAPI(c *fiber.Ctx, deps *common.Deps) error {
	if err := database.DeleteCategory(deps.DB, common.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return common.Message(c, "Category deleted")
}

func validateExpense(e *models.Expense) error {
	e.Title = strings.TrimSpace(e.Title)
	if err := common.Required(map[string]string{"title": e.Title, "categoryId": e.CategoryID}); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than zero")
	}
	if e.PropertyID != nil && strings.TrimSpace(*e.PropertyID) == "" {
		e.PropertyID = nil
	}
	e.Category = nil
	return nil
}
