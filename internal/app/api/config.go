package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/storefront-api/internal/domains/payments/gateway"
	"github.com/Apurer/storefront-api/internal/platform/mail"
	"github.com/Apurer/storefront-api/internal/platform/observability"
	"github.com/Apurer/storefront-api/internal/platform/postgres"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                       string
	Postgres                   postgres.Options
	TemporalAddress            string
	TemporalNamespace          string
	TemporalDisabled           bool
	SessionTTL                 time.Duration
	SessionPurgeIntervalMinute int
	DependencyTimeout          time.Duration
	FrontendURL                string
	BackendURL                 string
	PayHere                    gateway.Config
	SMTP                       mail.SMTPConfig
	AdminEmail                 string
	AdminPassword              string
	Telemetry                  observability.Settings
}

// PaymentsEnabled reports whether merchant credentials were supplied.
func (c Config) PaymentsEnabled() bool {
	return c.PayHere.MerchantID != "" && c.PayHere.MerchantSecret != ""
}

// SMTPEnabled reports whether outbound mail can be delivered.
func (c Config) SMTPEnabled() bool {
	return c.SMTP.Host != ""
}

// LoadConfig loads envFile when it exists, reads environment variables,
// applies defaults, and validates basic constraints.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		FrontendURL:       strings.TrimRight(envDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
		BackendURL:        strings.TrimRight(envDefault("BACKEND_URL", "http://localhost:8080"), "/"),
		AdminEmail:        strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		Telemetry: observability.Settings{
			ServiceName:  envDefault("OTEL_SERVICE_NAME", serviceName),
			Environment:  envDefault("ENVIRONMENT", "local"),
			OTLPEndpoint: strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
			OTLPInsecure: isTruthy(envDefault("OTEL_EXPORTER_OTLP_INSECURE", "true")),
			LogLevel:     observability.ParseLevel(os.Getenv("LOG_LEVEL")),
		},
	}
	var err error
	if cfg.SessionTTL, err = positiveDuration("SESSION_TTL_HOURS", time.Hour, 24); err != nil {
		return Config{}, err
	}
	if cfg.DependencyTimeout, err = positiveDuration("DEPENDENCY_TIMEOUT_SECONDS", time.Second, 5); err != nil {
		return Config{}, err
	}
	if cfg.Postgres, err = loadPostgres(); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_PURGE_INTERVAL_MINUTES")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("SESSION_PURGE_INTERVAL_MINUTES must be a positive integer")
		}
		cfg.SessionPurgeIntervalMinute = minutes
	}

	mode := strings.ToLower(envDefault("PAYHERE_MODE", gateway.ModeSandbox))
	if mode != gateway.ModeSandbox && mode != gateway.ModeLive {
		return Config{}, fmt.Errorf("PAYHERE_MODE must be %q or %q", gateway.ModeSandbox, gateway.ModeLive)
	}
	cfg.PayHere = gateway.Config{
		MerchantID:     strings.TrimSpace(os.Getenv("PAYHERE_MERCHANT_ID")),
		MerchantSecret: strings.TrimSpace(os.Getenv("PAYHERE_MERCHANT_SECRET")),
		Currency:       envDefault("PAYHERE_CURRENCY", "LKR"),
		Mode:           mode,
		Country:        envDefault("PAYHERE_COUNTRY", "Sri Lanka"),
		ReturnURL:      cfg.FrontendURL + "/pages/order-success.html",
		CancelURL:      cfg.FrontendURL + "/pages/checkout.html",
		NotifyURL:      cfg.BackendURL + "/api/payment/payhere/notify",
	}

	smtpPort := 587
	if raw := strings.TrimSpace(os.Getenv("SMTP_PORT")); raw != "" {
		if smtpPort, err = strconv.Atoi(raw); err != nil || smtpPort <= 0 {
			return Config{}, fmt.Errorf("SMTP_PORT must be a positive integer")
		}
	}
	cfg.SMTP = mail.SMTPConfig{
		Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		Port:     smtpPort,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     envDefault("SMTP_FROM", "no-reply@storefront.local"),
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return cfg, nil
}

func loadPostgres() (postgres.Options, error) {
	opts := postgres.Options{DSN: strings.TrimSpace(os.Getenv("POSTGRES_DSN"))}
	var err error
	if opts.MaxOpenConns, err = positiveInt("POSTGRES_MAX_OPEN_CONNS", 10); err != nil {
		return opts, err
	}
	if opts.MaxIdleConns, err = positiveInt("POSTGRES_MAX_IDLE_CONNS", 5); err != nil {
		return opts, err
	}
	if opts.ConnMaxLifetime, err = positiveDuration("POSTGRES_CONN_MAX_LIFETIME_MINUTES", time.Minute, 30); err != nil {
		return opts, err
	}
	if opts.SlowQuery, err = positiveDuration("POSTGRES_SLOW_QUERY_MS", time.Millisecond, 200); err != nil {
		return opts, err
	}
	return opts, nil
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func positiveDuration(key string, unit time.Duration, fallback int) (time.Duration, error) {
	n, err := positiveInt(key, fallback)
	return time.Duration(n) * unit, err
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
