package models

import "time"

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

// MaskedSecret replaces stored secrets in API responses.
const MaskedSecret = "********"

// Settings holds company details and integration credentials. Exactly one row exists.
type Settings struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	CompanyName  string `json:"companyName"`
	CompanyEmail string `json:"companyEmail"`
	CompanyPhone string `json:"companyPhone"`
	Currency     string `json:"currency" gorm:"size:3;default:KES"`

	SMTP  SMTPSettings  `json:"smtp" gorm:"embedded;embeddedPrefix:smtp_"`
	SMS   SMSSettings   `json:"sms" gorm:"embedded;embeddedPrefix:sms_"`
	Mpesa MpesaSettings `json:"mpesa" gorm:"embedded;embeddedPrefix:mpesa_"`
}

type SMTPSettings struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	FromName string `json:"fromName"`
}

// Complete reports whether enough is configured to attempt delivery.
func (s SMTPSettings) Complete() bool {
	return s.Host != "" && s.Port > 0 && s.From != ""
}

type SMSSettings struct {
	Enabled   bool   `json:"enabled"`
	Provider  string `json:"provider"` // africastalking|twilio
	APIKey    string `json:"apiKey"`
	Username  string `json:"username"` // Africa's Talking username or Twilio account SID
	AuthToken string `json:"authToken"`
	SenderID  string `json:"senderId"`
}

func (s SMSSettings) Complete() bool {
	return s.Provider != "" && (s.APIKey != "" || s.AuthToken != "")
}

type MpesaSettings struct {
	Enabled         bool   `json:"enabled"`
	Environment     string `json:"environment"` // sandbox|production
	ConsumerKey     string `json:"consumerKey"`
	ConsumerSecret  string `json:"consumerSecret"`
	Shortcode       string `json:"shortcode"`
	Passkey         string `json:"passkey"`
	TransactionType string `json:"transactionType"`
	CallbackURL     string `json:"callbackUrl"`
}

// Masked returns a copy safe to return from the API.
func (s Settings) Masked() Settings {
	s.SMTP.Password = mask(s.SMTP.Password)
	s.SMS.APIKey = mask(s.SMS.APIKey)
	s.SMS.AuthToken = mask(s.SMS.AuthToken)
	s.Mpesa.ConsumerSecret = mask(s.Mpesa.ConsumerSecret)
	s.Mpesa.Passkey = mask(s.Mpesa.Passkey)
	return s
}

// KeepSecrets copies stored secrets into s wherever s carries the mask or
// nothing, so a client can round-trip a masked document.
func (s *Settings) KeepSecrets(stored Settings) {
	keep(&s.SMTP.Password, stored.SMTP.Password)
	keep(&s.SMS.APIKey, stored.SMS.APIKey)
	keep(&s.SMS.AuthToken, stored.SMS.AuthToken)
	keep(&s.Mpesa.ConsumerSecret, stored.Mpesa.ConsumerSecret)
	keep(&s.Mpesa.Passkey, stored.Mpesa.Passkey)
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	return MaskedSecret
}

func keep(dst *string, stored string) {
	if *dst == MaskedSecret || *dst == "" {
		*dst = stored
	}
}
