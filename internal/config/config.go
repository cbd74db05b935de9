// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// JWTSecret is the HMAC secret customer bearer tokens are signed with. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFormat is "json" (default) or "text" for coloured console output.
	LogFormat string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Location defines the calendar day that counts as "today" for past-date
	// checks and reminders. BOOKING_TIMEZONE, defaults to UTC.
	Location *time.Location

	// BookingTxTimeout bounds the create-booking transaction. Defaults to 5s.
	BookingTxTimeout time.Duration

	// Currency is the ISO code echoed in pricing output. Defaults to "EUR".
	Currency string

	// SendGridAPIKey enables email delivery. When empty, emails are logged only.
	SendGridAPIKey  string
	MailFromAddress string
	MailFromName    string

	// ReminderSchedule is the cron spec of the check-in reminder job.
	// Empty disables it. Defaults to "0 9 * * *".
	ReminderSchedule string

	// RateLimitRPS and RateLimitBurst bound booking creation per client IP.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart applies pending migrations at boot. Defaults to true.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first variable that could not be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Currency:         strings.ToUpper(getEnv("CURRENCY", "EUR")),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		MailFromAddress:  getEnv("MAIL_FROM_ADDRESS", "bookings@example.com"),
		MailFromName:     getEnv("MAIL_FROM_NAME", "Motorhome Rentals"),
		ReminderSchedule: "0 9 * * *",
	}
	// Set-but-empty is meaningful here: it disables the job.
	if v, ok := os.LookupEnv("REMINDER_SCHEDULE"); ok {
		cfg.ReminderSchedule = strings.TrimSpace(v)
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.Location, err = time.LoadLocation(getEnv("BOOKING_TIMEZONE", "UTC")); err != nil {
		return Config{}, invalid("BOOKING_TIMEZONE", err)
	}
	if cfg.BookingTxTimeout, err = time.ParseDuration(getEnv("BOOKING_TX_TIMEOUT", "5s")); err != nil {
		return Config{}, invalid("BOOKING_TX_TIMEOUT", err)
	}
	if cfg.BookingTxTimeout <= 0 {
		return Config{}, invalid("BOOKING_TX_TIMEOUT", errors.New("must be positive"))
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64); err != nil || cfg.RateLimitRPS <= 0 {
		return Config{}, invalid("RATE_LIMIT_RPS", orPositive(err))
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10")); err != nil || cfg.RateLimitBurst <= 0 {
		return Config{}, invalid("RATE_LIMIT_BURST", orPositive(err))
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		return Config{}, invalid("MAX_BODY_BYTES", orPositive(err))
	}
	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true")); err != nil {
		return Config{}, invalid("MIGRATE_ON_START", err)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, invalid("LOG_FORMAT", fmt.Errorf("want json or text, got %q", cfg.LogFormat))
	}

	return cfg, nil
}

func invalid(key string, err error) error {
	return fmt.Errorf("invalid %s: %w", key, err)
}

func orPositive(err error) error {
	if err != nil {
		return err
	}
	return errors.New("must be positive")
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
