package mpesa

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Callback is the stkCallback object Daraja posts to the callback URL.
type Callback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	Metadata          *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Items []MetadataItem `json:"Item"`
}

// MetadataItem values arrive as JSON numbers or strings depending on the field.
type MetadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// CallbackAck is the body Daraja expects back.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

var Accepted = CallbackAck{ResultCode: 0, ResultDesc: "Accepted"}

// ParseCallback decodes {"Body":{"stkCallback":{...}}}.
func ParseCallback(body []byte) (*Callback, error) {
	var envelope struct {
		Body *struct {
			STKCallback *Callback `json:"stkCallback"`
		} `json:"Body"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid callback body: %w", err)
	}
	if envelope.Body == nil || envelope.Body.STKCallback == nil {
		return nil, errors.New("callback body has no stkCallback")
	}
	cb := envelope.Body.STKCallback
	if strings.TrimSpace(cb.CheckoutRequestID) == "" {
		return nil, errors.New("callback has no CheckoutRequestID")
	}
	return cb, nil
}

// Succeeded reports whether the customer completed the payment.
func (c *Callback) Succeeded() bool {
	return c.ResultCode == 0
}

func (c *Callback) item(name string) string {
	if c.Metadata == nil {
		return ""
	}
	for _, it := range c.Metadata.Items {
		if it.Name != name || len(it.Value) == 0 {
			continue
		}
		raw := bytes.TrimSpace(it.Value)
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return string(raw)
	}
	return ""
}

// Amount reports the paid amount and whether the metadata carried a usable one.
func (c *Callback) Amount() (decimal.Decimal, bool) {
	raw := c.item("Amount")
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func (c *Callback) ReceiptNumber() string { return c.item("MpesaReceiptNumber") }

func (c *Callback) PhoneNumber() string { return c.item("PhoneNumber") }
