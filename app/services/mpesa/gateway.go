package mpesa

import (
	"context"
	"sync"

	"kodi-rentals/app/models"
)

// SettingsSource supplies the current integration settings.
type SettingsSource interface {
	Get(ctx context.Context) (models.Settings, error)
}

// Gateway resolves Daraja credentials from settings on every call and keeps
// one Client, with its token cache, per credential set.
type Gateway struct {
	settings        SettingsSource
	defaultCallback string
	opts            []Option

	mu     sync.Mutex
	creds  Credentials
	client *Client
}

// NewGateway creates a Gateway. defaultCallback is used when the settings do
// not name a callback URL.
func NewGateway(settings SettingsSource, defaultCallback string, opts ...Option) *Gateway {
	return &Gateway{settings: settings, defaultCallback: defaultCallback, opts: opts}
}

// Client returns a client for the current settings.
func (g *Gateway) Client(ctx context.Context) (*Client, error) {
	s, err := g.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Mpesa.Enabled {
		return nil, ErrDisabled
	}

	creds := Credentials{
		Environment:     s.Mpesa.Environment,
		ConsumerKey:     s.Mpesa.ConsumerKey,
		ConsumerSecret:  s.Mpesa.ConsumerSecret,
		Shortcode:       s.Mpesa.Shortcode,
		Passkey:         s.Mpesa.Passkey,
		TransactionType: s.Mpesa.TransactionType,
		CallbackURL:     s.Mpesa.CallbackURL,
	}
	if creds.CallbackURL == "" {
		creds.CallbackURL = g.defaultCallback
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil && g.creds == creds {
		return g.client, nil
	}
	client, err := NewClient(creds, g.opts...)
	if err != nil {
		return nil, err
	}
	g.creds, g.client = creds, client
	return client, nil
}

func (g *Gateway) STKPush(ctx context.Context, in STKPushRequest) (*STKPushResponse, error) {
	c, err := g.Client(ctx)
	if err != nil {
		return nil, err
	}
	return c.STKPush(ctx, in)
}

func (g *Gateway) QuerySTK(ctx context.Context, checkoutRequestID string) (*STKQueryResponse, error) {
	c, err := g.Client(ctx)
	if err != nil {
		return nil, err
	}
	return c.QuerySTK(ctx, checkoutRequestID)
}
