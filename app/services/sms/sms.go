// Package sms sends text messages through Africa's Talking or Twilio.
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kodi-rentals/app/config"
	"kodi-rentals/app/models"
	"kodi-rentals/app/services/mpesa"
)

const (
	ProviderAfricasTalking = "africastalking"
	ProviderTwilio         = "twilio"

	ModeSettings  = "settings"
	ModeEnv       = "env"
	ModeSimulated = "simulated"
)

var ErrNotConfigured = errors.New("SMS is not configured")

// SettingsSource supplies the current integration settings.
type SettingsSource interface {
	Get(ctx context.Context) (models.Settings, error)
}

type Delivery struct {
	Mode string `json:"mode"`
}

type provider struct {
	mode      string
	name      string
	apiKey    string
	username  string
	authToken string
	senderID  string
}

// Sender delivers SMS with the same fallback order as email: stored
// settings, then .env, then a log-only simulation.
type Sender struct {
	settings   SettingsSource
	env        config.SMSConfig
	logger     *slog.Logger
	httpClient *http.Client

	africasTalkingURL string
	twilioURL         string
}

func New(settings SettingsSource, env config.SMSConfig, logger *slog.Logger) *Sender {
	return &Sender{
		settings:          settings,
		env:               env,
		logger:            logger,
		httpClient:        &http.Client{Timeout: 15 * time.Second},
		africasTalkingURL: "https://api.africastalking.com/version1/messaging",
		twilioURL:         "https://api.twilio.com/2010-04-01",
	}
}

// Send delivers text to phone. It only fails when the number is unusable.
func (s *Sender) Send(ctx context.Context, phone, text string) (Delivery, error) {
	to, err := mpesa.NormalizePhone(phone)
	if err != nil {
		return Delivery{}, err
	}
	to = "+" + to

	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("could not load settings for SMS, using .env provider", "error", err)
	}

	for _, p := range s.providers(settings) {
		if err := s.deliver(ctx, p, to, text); err != nil {
			s.logger.Warn("SMS provider failed, falling back", "mode", p.mode, "provider", p.name, "to", to, "error", err)
			continue
		}
		s.logger.Info("SMS sent", "mode", p.mode, "provider", p.name, "to", to)
		return Delivery{Mode: p.mode}, nil
	}

	s.logger.Info("SMS simulated", "to", to, "length", len(text))
	return Delivery{Mode: ModeSimulated}, nil
}

// Test sends text using only the stored settings and returns the provider error.
func (s *Sender) Test(ctx context.Context, phone, text string) error {
	to, err := mpesa.NormalizePhone(phone)
	if err != nil {
		return err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.SMS.Complete() {
		return ErrNotConfigured
	}
	return s.deliver(ctx, settingsProvider(settings.SMS), "+"+to, text)
}

func (s *Sender) providers(settings models.Settings) []provider {
	var out []provider
	if settings.SMS.Enabled && settings.SMS.Complete() {
		out = append(out, settingsProvider(settings.SMS))
	}
	if s.env.HasSMS() {
		out = append(out, provider{
			mode:      ModeEnv,
			name:      strings.ToLower(s.env.Provider),
			apiKey:    s.env.APIKey,
			username:  s.env.Username,
			authToken: s.env.APIKey,
			senderID:  s.env.SenderID,
		})
	}
	return out
}

func settingsProvider(c models.SMSSettings) provider {
	return provider{
		mode:      ModeSettings,
		name:      strings.ToLower(c.Provider),
		apiKey:    c.APIKey,
		username:  c.Username,
		authToken: c.AuthToken,
		senderID:  c.SenderID,
	}
}

func (s *Sender) deliver(ctx context.Context, p provider, to, text string) error {
	switch p.name {
	case ProviderAfricasTalking:
		return s.sendAfricasTalking(ctx, p, to, text)
	case ProviderTwilio:
		return s.sendTwilio(ctx, p, to, text)
	default:
		return fmt.Errorf("unknown SMS provider %q", p.name)
	}
}

func (s *Sender) sendAfricasTalking(ctx context.Context, p provider, to, text string) error {
	form := url.Values{
		"username": {p.username},
		"to":       {to},
		"message":  {text},
	}
	if p.senderID != "" {
		form.Set("from", p.senderID)
	}

	endpoint := s.africasTalkingURL
	if p.username == "sandbox" && strings.Contains(endpoint, "api.africastalking.com") {
		endpoint = strings.Replace(endpoint, "api.africastalking.com", "api.sandbox.africastalking.com", 1)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", p.apiKey)

	body, err := s.do(req)
	if err != nil {
		return err
	}

	var out struct {
		SMSMessageData struct {
			Message    string `json:"Message"`
			Recipients []struct {
				Number string `json:"number"`
				Status string `json:"status"`
			} `json:"Recipients"`
		} `json:"SMSMessageData"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	recipients := out.SMSMessageData.Recipients
	if len(recipients) == 0 {
		return fmt.Errorf("Africa's Talking: %s", out.SMSMessageData.Message)
	}
	if r := recipients[0]; r.Status != "Success" {
		return fmt.Errorf("Africa's Talking rejected %s: %s", r.Number, r.Status)
	}
	return nil
}

func (s *Sender) sendTwilio(ctx context.Context, p provider, to, text string) error {
	form := url.Values{
		"To":   {to},
		"From": {p.senderID},
		"Body": {text},
	}
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.twilioURL, url.PathEscape(p.username))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.username, p.authToken)

	_, err = s.do(req)
	return err
}

func (s *Sender) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call SMS API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return nil, fmt.Errorf("SMS API error (status %d): %s", resp.StatusCode, e.Message)
		}
		return nil, fmt.Errorf("SMS API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
