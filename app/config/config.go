package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          int
	PublicBaseURL string
	Timezone      string
	CORSOrigins   string

	DB       DBConfig
	JWT      JWTConfig
	Logging  LoggingConfig
	SMTP     SMTPConfig
	SMS      SMSConfig
	Storage  StorageConfig
	Schedule ScheduleConfig
}

type DBConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // text|json
}

// SMTPConfig is the .env fallback used when the SMTP integration stored in
// Settings is disabled or cannot deliver.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMSConfig is the .env fallback for the SMS integration.
type SMSConfig struct {
	Provider string
	APIKey   string
	Username string
	SenderID string
}

type StorageConfig struct {
	S3Bucket     string
	S3Region     string
	DocumentsDir string
}

type ScheduleConfig struct {
	ReminderInterval time.Duration
	SettingsCacheTTL time.Duration
}

// Load reads .env (if present) and the process environment, applying defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_TIMEZONE", "Africa/Nairobi")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "kodi")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("JWT_SECRET", "kodi-rentals-secret-key") // Default for development
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMS_PROVIDER", "africastalking")
	v.SetDefault("S3_REGION", "af-south-1")
	v.SetDefault("DOCUMENTS_DIR", "./uploads")
	v.SetDefault("REMINDER_INTERVAL", "1m")
	v.SetDefault("SETTINGS_CACHE_TTL", "30s")

	cfg := &Config{
		Port:          v.GetInt("PORT"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		Timezone:      v.GetString("APP_TIMEZONE"),
		CORSOrigins:   v.GetString("CORS_ORIGINS"),
		DB: DBConfig{
			URL:          v.GetString("DATABASE_URL"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("SMTP_FROM"),
		},
		SMS: SMSConfig{
			Provider: v.GetString("SMS_PROVIDER"),
			APIKey:   v.GetString("SMS_API_KEY"),
			Username: v.GetString("SMS_USERNAME"),
			SenderID: v.GetString("SMS_SENDER_ID"),
		},
		Storage: StorageConfig{
			S3Bucket:     v.GetString("S3_BUCKET"),
			S3Region:     v.GetString("S3_REGION"),
			DocumentsDir: v.GetString("DOCUMENTS_DIR"),
		},
	}

	var err error
	if cfg.JWT.TTL, err = parseDuration(v, "JWT_TTL"); err != nil {
		return nil, err
	}
	if cfg.Schedule.ReminderInterval, err = parseDuration(v, "REMINDER_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.Schedule.SettingsCacheTTL, err = parseDuration(v, "SETTINGS_CACHE_TTL"); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d is out of range", cfg.Port)
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// DSN returns the lib/pq connection string.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=60",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// CallbackURL is the public M-Pesa webhook address, empty when no public base
// URL is configured.
func (c *Config) CallbackURL() string {
	if c.PublicBaseURL == "" {
		return ""
	}
	return c.PublicBaseURL + "/api/mpesa/callback"
}

// HasSMTP reports whether the .env SMTP fallback is usable.
func (c SMTPConfig) HasSMTP() bool {
	return c.Host != "" && c.From != ""
}

// HasSMS reports whether the .env SMS fallback is usable.
func (c SMSConfig) HasSMS() bool {
	return c.Provider != "" && c.APIKey != ""
}
