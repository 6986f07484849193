// Package testdb opens throwaway in-memory databases for tests.
package testdb

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New returns a migrated sqlite database private to the test.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db, Logger()))
	return db
}

// User creates a verified account.
func User(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:      email,
		Password:   "not-a-real-hash",
		FirstName:  "Test",
		LastName:   "Owner",
		IsVerified: true,
	}
	require.NoError(t, database.CreateUser(db, u))
	return u
}

// Unit creates a property with a single vacant unit renting at rent.
func Unit(t testing.TB, db *gorm.DB, userID string, rent int64) *models.Unit {
	t.Helper()
	p := &models.Property{UserID: userID, Name: "Riverside " + uuid.NewString()[:6], City: "Nairobi"}
	require.NoError(t, database.CreateProperty(db, p))

	u := &models.Unit{
		UserID:        userID,
		PropertyID:    p.ID,
		UnitNumber:    "A1",
		RentAmount:    decimal.NewFromInt(rent),
		DepositAmount: decimal.NewFromInt(rent),
	}
	require.NoError(t, database.CreateUnit(db, u))
	return u
}

// Tenant creates an active tenant in unitID (nil for no unit).
func Tenant(t testing.TB, db *gorm.DB, userID string, unitID *string, email, phone string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		UserID:     userID,
		FirstName:  "Amina",
		LastName:   "Otieno",
		Email:      email,
		Phone:      phone,
		UnitID:     unitID,
		RentAmount: decimal.NewFromInt(15000),
		Status:     models.TenantActive,
	}
	require.NoError(t, database.CreateTenant(db, tenant))
	return tenant
}
