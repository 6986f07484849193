// Package mpesa talks to Safaricom's Daraja API: OAuth tokens, Lipa na M-Pesa
// Online (STK push) requests, STK status queries and result callbacks.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
)

const (
	SandboxURL    = "https://sandbox.safaricom.co.ke"
	ProductionURL = "https://api.safaricom.co.ke"

	defaultTransactionType = "CustomerPayBillOnline"
	maxAccountReference    = 12
	maxTransactionDesc     = 13
)

var (
	ErrDisabled           = errors.New("M-Pesa integration is disabled")
	ErrMissingCredentials = errors.New("M-Pesa credentials are incomplete")
)

// Kenya does not observe daylight saving, so a fixed zone avoids depending on tzdata.
var nairobi = time.FixedZone("EAT", 3*60*60)

// APIError is a non-success answer from Daraja.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("M-Pesa error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("M-Pesa error (status %d): %s", e.StatusCode, e.Message)
}

// Credentials identify a Daraja app and the paybill/till it collects into.
type Credentials struct {
	Environment     string
	ConsumerKey     string
	ConsumerSecret  string
	Shortcode       string
	Passkey         string
	TransactionType string
	CallbackURL     string
}

func (c Credentials) validate() error {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "consumer key")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "consumer secret")
	}
	if c.Shortcode == "" {
		missing = append(missing, "shortcode")
	}
	if c.Passkey == "" {
		missing = append(missing, "passkey")
	}
	if c.CallbackURL == "" {
		missing = append(missing, "callback URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

func (c Credentials) baseURL() string {
	if strings.EqualFold(c.Environment, "production") {
		return ProductionURL
	}
	return SandboxURL
}

// Client is safe for concurrent use. Access tokens are cached until shortly
// before they expire.
type Client struct {
	creds      Credentials
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	now        func() time.Time
}

type Option func(*Client)

// WithBaseURL points the client at another Daraja host (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Daraja API client.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if creds.TransactionType == "" {
		creds.TransactionType = defaultTransactionType
	}
	c := &Client{
		creds:      creds,
		baseURL:    creds.baseURL(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tokens = oauth2.ReuseTokenSource(nil, &tokenSource{c: c})
	return c, nil
}

// tokenSource fetches client-credentials tokens. Daraja answers a plain GET
// with basic auth, which the oauth2 clientcredentials flow does not speak.
type tokenSource struct {
	c *Client
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	c := ts.c
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.creds.ConsumerKey, c.creds.ConsumerSecret)

	var body struct {
		AccessToken string      `json:"access_token"`
		ExpiresIn   json.Number `json:"expires_in"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	if body.AccessToken == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "empty access token"}
	}

	expiresIn, err := body.ExpiresIn.Int64()
	if err != nil || expiresIn <= 0 {
		expiresIn = 3599
	}
	return &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Duration(expiresIn)*time.Second - time.Minute),
	}, nil
}

// Timestamp formats t the way Daraja expects, in Nairobi time.
func Timestamp(t time.Time) string {
	return t.In(nairobi).Format("20060102150405")
}

// Password is base64(shortcode + passkey + timestamp).
func Password(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

// STKPushRequest asks a customer's phone to authorise a payment.
type STKPushRequest struct {
	Phone            string
	Amount           decimal.Decimal
	AccountReference string
	Description      string
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush starts a Lipa na M-Pesa Online payment. The amount is sent in whole
// shillings, rounded up.
func (c *Client) STKPush(ctx context.Context, in STKPushRequest) (*STKPushResponse, error) {
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	amount := in.Amount.Ceil().IntPart()
	if amount < 1 {
		return nil, fmt.Errorf("amount must be at least 1, got %s", in.Amount)
	}

	ts := Timestamp(c.now())
	payload := map[string]any{
		"BusinessShortCode": c.creds.Shortcode,
		"Password":          Password(c.creds.Shortcode, c.creds.Passkey, ts),
		"Timestamp":         ts,
		"TransactionType":   c.creds.TransactionType,
		"Amount":            amount,
		"PartyA":            phone,
		"PartyB":            c.creds.Shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       c.creds.CallbackURL,
		"AccountReference":  truncate(orDefault(in.AccountReference, "Rent"), maxAccountReference),
		"TransactionDesc":   truncate(orDefault(in.Description, "Rent payment"), maxTransactionDesc),
	}

	out := &STKPushResponse{}
	if err := c.post(ctx, "/mpesa/stkpush/v1/processrequest", payload, out); err != nil {
		return nil, err
	}
	if out.ResponseCode != "0" {
		return nil, &APIError{StatusCode: http.StatusOK, Code: out.ResponseCode, Message: out.ResponseDescription}
	}
	if out.CheckoutRequestID == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "response carried no CheckoutRequestID"}
	}
	return out, nil
}

// STKQueryResponse reports the state of an earlier STK push. ResultCode is
// empty while the customer has not yet answered.
type STKQueryResponse struct {
	ResponseCode        string      `json:"ResponseCode"`
	ResponseDescription string      `json:"ResponseDescription"`
	MerchantRequestID   string      `json:"MerchantRequestID"`
	CheckoutRequestID   string      `json:"CheckoutRequestID"`
	ResultCode          json.Number `json:"ResultCode"`
	ResultDesc          string      `json:"ResultDesc"`
}

// Completed reports whether the customer finished the transaction successfully.
func (r *STKQueryResponse) Completed() bool {
	return r.ResultCode.String() == "0"
}

// QuerySTK asks Daraja for the outcome of an STK push.
func (c *Client) QuerySTK(ctx context.Context, checkoutRequestID string) (*STKQueryResponse, error) {
	if checkoutRequestID == "" {
		return nil, errors.New("checkout request ID is required")
	}
	ts := Timestamp(c.now())
	payload := map[string]any{
		"BusinessShortCode": c.creds.Shortcode,
		"Password":          Password(c.creds.Shortcode, c.creds.Passkey, ts),
		"Timestamp":         ts,
		"CheckoutRequestID": checkoutRequestID,
	}
	out := &STKQueryResponse{}
	if err := c.post(ctx, "/mpesa/stkpushquery/v1/query", payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call M-Pesa API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var e struct {
			ErrorCode    string `json:"errorCode"`
			ErrorMessage string `json:"errorMessage"`
		}
		if json.Unmarshal(body, &e) == nil && e.ErrorMessage != "" {
			apiErr.Code = e.ErrorCode
			apiErr.Message = e.ErrorMessage
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
