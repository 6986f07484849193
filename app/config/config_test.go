package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REMINDER_INTERVAL", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "Africa/Nairobi", cfg.Timezone)
	assert.Equal(t, time.Minute, cfg.Schedule.ReminderInterval)
	assert.Equal(t, 30*time.Second, cfg.Schedule.SettingsCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Contains(t, cfg.DB.DSN(), "dbname=kodi")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REMINDER_INTERVAL", "30s")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/kodi")
	t.Setenv("PUBLIC_BASE_URL", "https://rent.example.com/")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("SMTP_FROM", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Schedule.ReminderInterval)
	assert.Equal(t, "postgres://u:p@db/kodi", cfg.DB.DSN())
	assert.Equal(t, "https://rent.example.com/api/mpesa/callback", cfg.CallbackURL())
	assert.Equal(t, "mailer@example.com", cfg.SMTP.From)
	assert.True(t, cfg.SMTP.HasSMTP())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REMINDER_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("REMINDER_INTERVAL", "1m")
	t.Setenv("PORT", "70000")
	_, err = Load()
	assert.Error(t, err)
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
