package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"kodi-rentals/app/config"
	"kodi-rentals/app/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type staticSettings struct{ s models.Settings }

func (s staticSettings) Get(context.Context) (models.Settings, error) { return s.s, nil }

type recorder struct {
	fail  map[string]bool
	modes []string
	last  bytes.Buffer
}

func (r *recorder) send(_ context.Context, t transport, msg *mail.Msg) error {
	r.modes = append(r.modes, t.mode)
	if r.fail[t.mode] {
		return errors.New("connection refused")
	}
	r.last.Reset()
	_, err := msg.WriteTo(&r.last)
	return err
}

func newTestMailer(t *testing.T, s models.Settings, env config.SMTPConfig) (*Mailer, *recorder) {
	t.Helper()
	m, err := New(staticSettings{s}, env, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	rec := &recorder{fail: map[string]bool{}}
	m.send = rec.send
	return m, rec
}

func smtpSettings() models.Settings {
	s := models.Settings{CompanyName: "Kodi Homes"}
	s.SMTP = models.SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587, From: "rent@example.com", FromName: "Kodi Homes"}
	return s
}

var envSMTP = config.SMTPConfig{Host: "smtp.env.example.com", Port: 587, From: "env@example.com"}

func TestSendUsesStoredSettingsFirst(t *testing.T) {
	m, rec := newTestMailer(t, smtpSettings(), envSMTP)

	d, err := m.Send(context.Background(), Message{
		To:       "tenant@example.com",
		Subject:  "Verify your account",
		Template: "otp",
		Data:     map[string]any{"Name": "Amina", "Code": "482913", "Minutes": 10},
	})
	require.NoError(t, err)
	assert.Equal(t, ModeSettings, d.Mode)
	assert.Equal(t, []string{ModeSettings}, rec.modes)

	raw := rec.last.String()
	assert.Contains(t, raw, "482913")
	assert.Contains(t, raw, "Kodi Homes")
	assert.Contains(t, raw, "tenant@example.com")
}

func TestSendFallsBackToEnvThenSimulation(t *testing.T) {
	m, rec := newTestMailer(t, smtpSettings(), envSMTP)
	rec.fail[ModeSettings] = true

	d, err := m.Send(context.Background(), Message{To: "tenant@example.com", Subject: "Test", Template: "test"})
	require.NoError(t, err)
	assert.Equal(t, ModeEnv, d.Mode)

	rec.fail[ModeEnv] = true
	rec.modes = nil
	d, err = m.Send(context.Background(), Message{To: "tenant@example.com", Subject: "Test", Template: "test"})
	require.NoError(t, err)
	assert.Equal(t, ModeSimulated, d.Mode)
	assert.Equal(t, []string{ModeSettings, ModeEnv}, rec.modes)

	// a stored config with an unusable sender falls through to .env
	bad := smtpSettings()
	bad.SMTP.From = "not an address"
	m, rec = newTestMailer(t, bad, envSMTP)
	d, err = m.Send(context.Background(), Message{To: "tenant@example.com", Subject: "Test", Template: "test"})
	require.NoError(t, err)
	assert.Equal(t, ModeEnv, d.Mode)
	assert.Equal(t, []string{ModeEnv}, rec.modes)
}

func TestSendSkipsDisabledSettings(t *testing.T) {
	s := smtpSettings()
	s.SMTP.Enabled = false
	m, rec := newTestMailer(t, s, config.SMTPConfig{})

	d, err := m.Send(context.Background(), Message{To: "tenant@example.com", Subject: "Reminder", Template: "reminder",
		Data: map[string]any{"TenantName": "Amina", "Title": "Rent due", "Message": "Please pay"}})
	require.NoError(t, err)
	assert.Equal(t, ModeSimulated, d.Mode)
	assert.Empty(t, rec.modes)
}

func TestSendWithAttachment(t *testing.T) {
	m, rec := newTestMailer(t, smtpSettings(), config.SMTPConfig{})

	_, err := m.Send(context.Background(), Message{
		To:          "tenant@example.com",
		Subject:     "Receipt",
		Template:    "receipt",
		Data: map[string]any{
			"TenantName":    "Amina",
			"ReceiptNumber": "RCT-1",
			"Currency":      "KES",
			"Month":         "2024-05",
			"Amount":        decimal.NewFromInt(15000),
		},
		Attachments: []Attachment{{Name: "receipt.pdf", Content: []byte("%PDF-1.3")}},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.last.String(), "receipt.pdf")
}

func TestSendRejectsUnknownTemplateAndMissingRecipient(t *testing.T) {
	m, _ := newTestMailer(t, smtpSettings(), config.SMTPConfig{})

	_, err := m.Send(context.Background(), Message{To: "tenant@example.com", Template: "nope"})
	assert.Error(t, err)

	_, err = m.Send(context.Background(), Message{Template: "test"})
	assert.Error(t, err)
}

func TestVerifyRequiresSettings(t *testing.T) {
	m, _ := newTestMailer(t, models.Settings{}, envSMTP)
	assert.ErrorIs(t, m.Verify(context.Background()), ErrNotConfigured)
}
