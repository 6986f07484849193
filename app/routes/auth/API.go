package auth

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"
	"kodi-rentals/app/services/mailer"

	"github.com/gofiber/fiber/v2"
)

const (
	otpPurpose     = "signup"
	otpTTL         = 10 * time.Minute
	otpMaxAttempts = 5
	minPasswordLen = 8
)

func RegisterAPI(c *fiber.Ctx, deps *common.Deps) error {
	type RegisterRequest struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
	}

	var req RegisterRequest
	if err := common.Parse(c, &req); err != nil {
		return err
	}
	if err := common.Required(map[string]string{
		"email": req.Email, "password": req.Password, "firstName": req.FirstName, "lastName": req.LastName,
	}); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid email address")
	}
	if len(req.Password) < minPasswordLen {
		return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters")
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
	}
	if err := database.CreateUser(deps.DB, user); err != nil {
		return err
	}

	delivery, err := sendOTP(c, deps, user)
	if err != nil {
		return err
	}

	return common.Created(c, fiber.Map{
		"userId":   user.ID,
		"email":    user.Email,
		"delivery": delivery.Mode,
		"message":  "Account created. Enter the code sent to your email to verify it.",
	})
}

func VerifyOTPAPI(c *fiber.Ctx, deps *common.Deps) error {
	type VerifyRequest struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}

	var req VerifyRequest
	if err := common.Parse(c, &req); err != nil {
		return err
	}
	if err := common.Required(map[string]string{"email": req.Email, "code": req.Code}); err != nil {
		return err
	}

	invalid := fiber.NewError(fiber.StatusBadRequest, "Invalid or expired code")

	user, err := database.GetUserByEmail(deps.DB, req.Email)
	if errors.Is(err, database.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}

	code, err := database.GetActiveVerificationCode(deps.DB, user.ID, otpPurpose)
	if errors.Is(err, database.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}
	if code.Attempts >= otpMaxAttempts {
		return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts, request a new code")
	}
	if !CheckPasswordHash(strings.TrimSpace(req.Code), code.CodeHash) {
		if err := database.RecordVerificationAttempt(deps.DB, code.ID); err != nil {
			return err
		}
		return invalid
	}
	if err := database.ConsumeVerificationCode(deps.DB, code); err != nil {
		return invalid
	}
	user.IsVerified = true

	return issueSession(c, deps, user)
}

func ResendOTPAPI(c *fiber.Ctx, deps *common.Deps) error {
	type ResendRequest struct {
		Email string `json:"email"`
	}

	var req ResendRequest
	if err := common.Parse(c, &req); err != nil {
		return err
	}
	if err := common.Required(map[string]string{"email": req.Email}); err != nil {
		return err
	}

	user, err := database.GetUserByEmail(deps.DB, req.Email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	// Unknown and already verified addresses get the same answer.
	if err == nil && !user.IsVerified {
		if _, err := sendOTP(c, deps, user); err != nil {
			return err
		}
	}
	return common.Message(c, "If the account exists and is unverified, a new code has been sent")
}

func LoginAPI(c *fiber.Ctx, deps *common.Deps) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := common.Parse(c, &req); err != nil {
		return err
	}

	user, err := database.GetUserByEmail(deps.DB, req.Email)
	if errors.Is(err, database.ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return err
	}

	if !CheckPasswordHash(req.Password, user.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}
	if !user.IsVerified {
		return fiber.NewError(fiber.StatusForbidden, "Account is not verified")
	}

	database.LogActivity(deps.DB, deps.Logger, user.ID, models.ActionLogin, "user", user.ID, "Signed in")
	return issueSession(c, deps, user)
}

func LogoutAPI(c *fiber.Ctx) error {
	// Clear JWT cookie
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return common.Message(c, "Logged out")
}

func MeAPI(c *fiber.Ctx, deps *common.Deps) error {
	user, err := database.GetUserByID(deps.DB, common.UserID(c))
	if err != nil {
		return err
	}
	return common.Success(c, user)
}

func ChangePasswordAPI(c *fiber.Ctx, deps *common.Deps) error {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	var req ChangePasswordRequest
	if err := common.Parse(c, &req); err != nil {
		return err
	}
	if len(req.NewPassword) < minPasswordLen {
		return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters")
	}

	user, err := database.GetUserByID(deps.DB, common.UserID(c))
	if err != nil {
		return err
	}

	if !CheckPasswordHash(req.CurrentPassword, user.Password) {
		return fiber.NewError(fiber.StatusBadRequest, "Current password is incorrect")
	}

	hashedPassword, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := database.UpdateUserPassword(deps.DB, user.ID, hashedPassword); err != nil {
		return err
	}

	return common.Message(c, "Password changed successfully")
}

func sendOTP(c *fiber.Ctx, deps *common.Deps, user *models.User) (mailer.Delivery, error) {
	code, err := GenerateOTP()
	if err != nil {
		return mailer.Delivery{}, err
	}
	hash, err := hashOTP(code)
	if err != nil {
		return mailer.Delivery{}, err
	}

	err = database.CreateVerificationCode(deps.DB, &models.VerificationCode{
		UserID:    user.ID,
		CodeHash:  hash,
		Purpose:   otpPurpose,
		ExpiresAt: time.Now().Add(otpTTL),
	})
	if err != nil {
		return mailer.Delivery{}, err
	}

	return deps.Mailer.Send(c.UserContext(), mailer.Message{
		To:       user.Email,
		Subject:  "Your verification code",
		Template: "otp",
		Data: map[string]any{
			"Name":    user.FirstName,
			"Code":    code,
			"Minutes": int(otpTTL.Minutes()),
		},
	})
}

func issueSession(c *fiber.Ctx, deps *common.Deps, user *models.User) error {
	token, err := GenerateJWT(deps.Config.JWT, user)
	if err != nil {
		return err
	}

	// Set JWT as HTTP-only cookie
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    token,
		Expires:  time.Now().Add(deps.Config.JWT.TTL),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: "Lax",
	})

	return common.Success(c, fiber.Map{
		"token": token,
		"user":  user,
	})
}
