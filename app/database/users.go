package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kodi-rentals/app/models"

	"gorm.io/gorm"
)

func GetUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	user := &models.User{}
	err := db.Where("email = ? AND is_active = ?", normalizeEmail(email), true).First(user).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func GetUserByID(db *gorm.DB, userID string) (*models.User, error) {
	user := &models.User{}
	err := db.Where("id = ? AND is_active = ?", userID, true).First(user).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

// CreateUser stores a user whose password is already hashed. The first
// account ever created becomes the admin.
func CreateUser(db *gorm.DB, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	user.IsActive = true

	return db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if existing > 0 {
			return conflict("email %s is already registered", user.Email)
		}

		var total int64
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if total == 0 {
			user.Role = models.RoleAdmin
		} else if user.Role == "" {
			user.Role = models.RoleManager
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

func UpdateUserPassword(db *gorm.DB, userID string, hashedPassword string) error {
	res := db.Model(&models.User{}).Where("id = ?", userID).Update("password", hashedPassword)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	return nil
}

// CreateVerificationCode replaces any outstanding code for the same purpose.
func CreateVerificationCode(db *gorm.DB, code *models.VerificationCode) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		err := tx.Model(&models.VerificationCode{}).
			Where("user_id = ? AND purpose = ? AND consumed_at IS NULL", code.UserID, code.Purpose).
			Update("consumed_at", now).Error
		if err != nil {
			return fmt.Errorf("retire old codes: %w", err)
		}
		code.ExpiresAt = code.ExpiresAt.UTC()
		return tx.Create(code).Error
	})
}

// GetActiveVerificationCode returns the newest unconsumed, unexpired code.
func GetActiveVerificationCode(db *gorm.DB, userID, purpose string) (*models.VerificationCode, error) {
	code := &models.VerificationCode{}
	err := db.Where("user_id = ? AND purpose = ? AND consumed_at IS NULL AND expires_at > ?",
		userID, purpose, time.Now().UTC()).
		Order("created_at DESC").
		First(code).Error
	if err != nil {
		return nil, translate(err, "verification code")
	}
	return code, nil
}

func RecordVerificationAttempt(db *gorm.DB, codeID string) error {
	return db.Model(&models.VerificationCode{}).Where("id = ?", codeID).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

// ConsumeVerificationCode marks the code used and the user verified together.
func ConsumeVerificationCode(db *gorm.DB, code *models.VerificationCode) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.VerificationCode{}).
			Where("id = ? AND consumed_at IS NULL", code.ID).
			Update("consumed_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("verification code already used")
		}
		return tx.Model(&models.User{}).Where("id = ?", code.UserID).Update("is_verified", true).Error
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
