package mpesa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"kodi-rentals/app/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	ConsumerKey:    "key",
	ConsumerSecret: "secret",
	Shortcode:      "174379",
	Passkey:        "passkey",
	CallbackURL:    "https://rent.example.com/api/mpesa/callback",
}

type fakeDaraja struct {
	*httptest.Server
	tokenCalls atomic.Int32
	lastPush   map[string]any
	pushStatus int
	pushBody   string
}

func newFakeDaraja(t *testing.T) *fakeDaraja {
	f := &fakeDaraja{pushStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.tokenCalls.Add(1)
		w.Write([]byte(`{"access_token":"tok-1","expires_in":"3599"}`))
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.lastPush = map[string]any{}
		json.NewDecoder(r.Body).Decode(&f.lastPush)
		w.WriteHeader(f.pushStatus)
		if f.pushBody != "" {
			w.Write([]byte(f.pushBody))
			return
		}
		w.Write([]byte(`{"MerchantRequestID":"m-1","CheckoutRequestID":"ws_CO_1","ResponseCode":"0","ResponseDescription":"Success. Request accepted for processing","CustomerMessage":"Success"}`))
	})
	mux.HandleFunc("/mpesa/stkpushquery/v1/query", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ResponseCode":"0","CheckoutRequestID":"ws_CO_1","ResultCode":"1032","ResultDesc":"Request cancelled by user"}`))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 7, 4, 9, 0, time.UTC)
}

func TestPasswordAndTimestamp(t *testing.T) {
	ts := Timestamp(fixedClock())
	assert.Equal(t, "20240305100409", ts, "timestamps are in Nairobi time")
	assert.Equal(t, "MTc0Mzc5cGFzc2tleTIwMjQwMzA1MTAwNDA5", Password("174379", "passkey", ts))
}

func TestSTKPush(t *testing.T) {
	daraja := newFakeDaraja(t)
	c, err := NewClient(testCreds, WithBaseURL(daraja.URL), WithClock(fixedClock))
	require.NoError(t, err)

	resp, err := c.STKPush(context.Background(), STKPushRequest{
		Phone:            "0712 345-678",
		Amount:           decimal.RequireFromString("1500.40"),
		AccountReference: "UNIT-A1-RIVERSIDE",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_1", resp.CheckoutRequestID)
	assert.Equal(t, "m-1", resp.MerchantRequestID)

	assert.Equal(t, "254712345678", daraja.lastPush["PhoneNumber"])
	assert.Equal(t, "254712345678", daraja.lastPush["PartyA"])
	assert.Equal(t, "174379", daraja.lastPush["PartyB"])
	assert.EqualValues(t, 1501, daraja.lastPush["Amount"])
	assert.Equal(t, "UNIT-A1-RIVE", daraja.lastPush["AccountReference"])
	assert.Equal(t, "CustomerPayBillOnline", daraja.lastPush["TransactionType"])
	assert.Equal(t, "20240305100409", daraja.lastPush["Timestamp"])
	assert.Equal(t, testCreds.CallbackURL, daraja.lastPush["CallBackURL"])

	_, err = c.STKPush(context.Background(), STKPushRequest{Phone: "254712345678", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, int32(1), daraja.tokenCalls.Load(), "token is reused until it expires")
}

func TestSTKPushUpstreamError(t *testing.T) {
	daraja := newFakeDaraja(t)
	daraja.pushStatus = http.StatusBadRequest
	daraja.pushBody = `{"requestId":"r","errorCode":"400.002.02","errorMessage":"Bad Request - Invalid PhoneNumber"}`
	c, err := NewClient(testCreds, WithBaseURL(daraja.URL))
	require.NoError(t, err)

	_, err = c.STKPush(context.Background(), STKPushRequest{Phone: "0712345678", Amount: decimal.NewFromInt(100)})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Bad Request - Invalid PhoneNumber", apiErr.Message)
}

func TestSTKPushValidation(t *testing.T) {
	c, err := NewClient(testCreds, WithBaseURL("http://127.0.0.1:0"))
	require.NoError(t, err)

	_, err = c.STKPush(context.Background(), STKPushRequest{Phone: "12345", Amount: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = c.STKPush(context.Background(), STKPushRequest{Phone: "0712345678", Amount: decimal.Zero})
	assert.Error(t, err)
}

func TestQuerySTK(t *testing.T) {
	daraja := newFakeDaraja(t)
	c, err := NewClient(testCreds, WithBaseURL(daraja.URL))
	require.NoError(t, err)

	resp, err := c.QuerySTK(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	assert.False(t, resp.Completed())
	assert.Equal(t, "1032", resp.ResultCode.String())
}

func TestNewClientRequiresCredentials(t *testing.T) {
	creds := testCreds
	creds.Passkey = ""
	_, err := NewClient(creds)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestNormalizePhone(t *testing.T) {
	valid := map[string]string{
		"0712345678":     "254712345678",
		"0112345678":     "254112345678",
		"712345678":      "254712345678",
		"+254712345678":  "254712345678",
		"254 712 345678": "254712345678",
		"0712-345-678":   "254712345678",
	}
	for in, want := range valid {
		got, err := NormalizePhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "0812345678", "25471234567", "07123456789", "07a2345678", "+1 555 0100"} {
		_, err := NormalizePhone(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, in)
	}
}

type staticSettings struct{ s models.Settings }

func (s staticSettings) Get(context.Context) (models.Settings, error) { return s.s, nil }

func TestGatewayResolvesSettings(t *testing.T) {
	disabled := NewGateway(staticSettings{}, "")
	_, err := disabled.Client(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)

	s := models.Settings{}
	s.Mpesa = models.MpesaSettings{Enabled: true, ConsumerKey: "key", ConsumerSecret: "secret", Shortcode: "174379", Passkey: "passkey"}

	noCallback := NewGateway(staticSettings{s}, "")
	_, err = noCallback.Client(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)

	g := NewGateway(staticSettings{s}, "https://rent.example.com/api/mpesa/callback")
	first, err := g.Client(context.Background())
	require.NoError(t, err)
	second, err := g.Client(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, SandboxURL, first.baseURL)
}
