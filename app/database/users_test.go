package database_test

import (
	"testing"
	"time"

	"kodi-rentals/app/database"
	"kodi-rentals/app/database/testdb"
	"kodi-rentals/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstUserBecomesAdmin(t *testing.T) {
	db := testdb.New(t)

	first := testdb.User(t, db, "First@Example.com ")
	second := testdb.User(t, db, "second@example.com")

	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, "first@example.com", first.Email)
	assert.Equal(t, models.RoleManager, second.Role)

	dup := &models.User{Email: "FIRST@example.com", Password: "x", FirstName: "a", LastName: "b"}
	assert.ErrorIs(t, database.CreateUser(db, dup), database.ErrConflict)

	found, err := database.GetUserByEmail(db, "FIRST@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestVerificationCodeLifecycle(t *testing.T) {
	db := testdb.New(t)
	user := &models.User{Email: "new@example.com", Password: "x", FirstName: "N", LastName: "U"}
	require.NoError(t, database.CreateUser(db, user))

	old := &models.VerificationCode{UserID: user.ID, CodeHash: "h1", Purpose: "signup", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, database.CreateVerificationCode(db, old))
	fresh := &models.VerificationCode{UserID: user.ID, CodeHash: "h2", Purpose: "signup", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, database.CreateVerificationCode(db, fresh))

	active, err := database.GetActiveVerificationCode(db, user.ID, "signup")
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, active.ID, "issuing a code retires the previous one")

	require.NoError(t, database.RecordVerificationAttempt(db, active.ID))
	require.NoError(t, database.ConsumeVerificationCode(db, active))
	assert.Error(t, database.ConsumeVerificationCode(db, active))

	_, err = database.GetActiveVerificationCode(db, user.ID, "signup")
	assert.ErrorIs(t, err, database.ErrNotFound)

	verified, err := database.GetUserByID(db, user.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

func TestSettingsSingleton(t *testing.T) {
	db := testdb.New(t)

	s, err := database.GetSettings(db)
	require.NoError(t, err)
	assert.Equal(t, "KES", s.Currency)

	s.CompanyName = "Kodi Homes"
	s.Mpesa.Enabled = true
	s.Mpesa.Shortcode = "174379"
	require.NoError(t, database.SaveSettings(db, s))

	again, err := database.GetSettings(db)
	require.NoError(t, err)
	assert.Equal(t, "Kodi Homes", again.CompanyName)
	assert.True(t, again.Mpesa.Enabled)
	assert.Equal(t, "174379", again.Mpesa.Shortcode)

	var rows int64
	require.NoError(t, db.Model(&models.Settings{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
