// Package mailer renders HTML emails and delivers them over SMTP, falling back
// from the SMTP settings stored in the database to the .env SMTP settings and
// finally to a log-only simulation.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kodi-rentals/app/config"
	"kodi-rentals/app/models"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"
)

//go:embed templates
var templatesFS embed.FS

// Delivery modes, in fallback order.
const (
	ModeSettings  = "settings"
	ModeEnv       = "env"
	ModeSimulated = "simulated"
)

var ErrNotConfigured = errors.New("SMTP is not configured")

// SettingsSource supplies the current integration settings.
type SettingsSource interface {
	Get(ctx context.Context) (models.Settings, error)
}

type Attachment struct {
	Name    string
	Content []byte
}

// Message is an email rendered from one of the embedded templates.
type Message struct {
	To          string
	Subject     string
	Template    string
	Data        map[string]any
	Attachments []Attachment
}

// Delivery tells the caller how a message went out.
type Delivery struct {
	Mode string `json:"mode"`
}

type transport struct {
	mode     string
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

type sendFunc func(ctx context.Context, t transport, msg *mail.Msg) error

type Mailer struct {
	settings SettingsSource
	env      config.SMTPConfig
	views    *html.Engine
	logger   *slog.Logger
	send     sendFunc
}

func New(settings SettingsSource, env config.SMTPConfig, logger *slog.Logger) (*Mailer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string {
		return d.StringFixed(2)
	})
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &Mailer{
		settings: settings,
		env:      env,
		views:    engine,
		logger:   logger,
		send:     dialAndSend,
	}, nil
}

// Send renders msg and delivers it through the first transport that accepts
// it. A transport that cannot build or send the message is skipped. Send only
// fails when the message has no recipient or cannot be rendered.
func (m *Mailer) Send(ctx context.Context, msg Message) (Delivery, error) {
	if strings.TrimSpace(msg.To) == "" {
		return Delivery{}, errors.New("recipient email is required")
	}

	s, err := m.settings.Get(ctx)
	if err != nil {
		m.logger.Warn("could not load settings for email, using .env SMTP", "error", err)
	}

	data := map[string]any{"Company": companyName(s), "Subject": msg.Subject}
	for k, v := range msg.Data {
		data[k] = v
	}
	var body bytes.Buffer
	if err := m.views.Render(&body, msg.Template, data, "layouts/email"); err != nil {
		return Delivery{}, fmt.Errorf("failed to render %s email: %w", msg.Template, err)
	}

	for _, t := range m.transports(s) {
		mm, err := buildMsg(t, msg, body.String())
		if err != nil {
			m.logger.Warn("email transport rejected message, falling back", "mode", t.mode, "from", t.from, "to", msg.To, "error", err)
			continue
		}
		if err := m.send(ctx, t, mm); err != nil {
			m.logger.Warn("email transport failed, falling back", "mode", t.mode, "host", t.host, "to", msg.To, "error", err)
			continue
		}
		m.logger.Info("email sent", "mode", t.mode, "to", msg.To, "subject", msg.Subject)
		return Delivery{Mode: t.mode}, nil
	}

	m.logger.Info("email simulated", "to", msg.To, "subject", msg.Subject, "template", msg.Template, "attachments", len(msg.Attachments))
	return Delivery{Mode: ModeSimulated}, nil
}

// Verify dials the SMTP server stored in settings and returns its error.
func (m *Mailer) Verify(ctx context.Context) error {
	s, err := m.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !s.SMTP.Complete() {
		return ErrNotConfigured
	}
	t := settingsTransport(s.SMTP)
	c, err := newClient(t)
	if err != nil {
		return err
	}
	if err := c.DialWithContext(ctx); err != nil {
		return err
	}
	return c.Close()
}

func (m *Mailer) transports(s models.Settings) []transport {
	var out []transport
	if s.SMTP.Enabled && s.SMTP.Complete() {
		out = append(out, settingsTransport(s.SMTP))
	}
	if m.env.HasSMTP() {
		out = append(out, transport{
			mode:     ModeEnv,
			host:     m.env.Host,
			port:     m.env.Port,
			username: m.env.Username,
			password: m.env.Password,
			from:     m.env.From,
		})
	}
	return out
}

func settingsTransport(s models.SMTPSettings) transport {
	return transport{
		mode:     ModeSettings,
		host:     s.Host,
		port:     s.Port,
		username: s.Username,
		password: s.Password,
		from:     s.From,
		fromName: s.FromName,
	}
}

func buildMsg(t transport, msg Message, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	var err error
	if t.fromName != "" {
		err = m.FromFormat(t.fromName, t.from)
	} else {
		err = m.From(t.from)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, body)
	for _, a := range msg.Attachments {
		m.AttachReader(a.Name, bytes.NewReader(a.Content))
	}
	return m, nil
}

func newClient(t transport) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(t.port),
		mail.WithTimeout(20 * time.Second),
	}
	if t.port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if t.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.username),
			mail.WithPassword(t.password),
		)
	}
	return mail.NewClient(t.host, opts...)
}

func dialAndSend(ctx context.Context, t transport, msg *mail.Msg) error {
	c, err := newClient(t)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

func companyName(s models.Settings) string {
	if s.CompanyName != "" {
		return s.CompanyName
	}
	return "Kodi Rentals"
}
