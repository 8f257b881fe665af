package api

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "POSTGRES_DSN", "SESSION_TTL_HOURS", "PAYHERE_MODE", "PAYHERE_MERCHANT_ID",
		"PAYHERE_MERCHANT_SECRET", "SMTP_HOST", "SMTP_PORT", "ADMIN_EMAIL", "ADMIN_PASSWORD", "FRONTEND_URL", "BACKEND_URL",
		"LOG_LEVEL", "SESSION_PURGE_INTERVAL_MINUTES", "DEPENDENCY_TIMEOUT_SECONDS", "OTEL_SERVICE_NAME"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.DependencyTimeout)
	assert.Equal(t, "sandbox", cfg.PayHere.Mode)
	assert.Equal(t, "LKR", cfg.PayHere.Currency)
	assert.Equal(t, "http://localhost:3000/pages/order-success.html", cfg.PayHere.ReturnURL)
	assert.Equal(t, "http://localhost:8080/api/payment/payhere/notify", cfg.PayHere.NotifyURL)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, serviceName, cfg.Telemetry.ServiceName)
	assert.Equal(t, slog.LevelInfo, cfg.Telemetry.LogLevel)
	assert.False(t, cfg.PaymentsEnabled())
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("PAYHERE_MODE", "LIVE")
	t.Setenv("PAYHERE_MERCHANT_ID", "1211149")
	t.Setenv("PAYHERE_MERCHANT_SECRET", "secret")
	t.Setenv("FRONTEND_URL", "https://shop.example.com/")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_PURGE_INTERVAL_MINUTES", "15")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "live", cfg.PayHere.Mode)
	assert.Equal(t, "https://shop.example.com/pages/checkout.html", cfg.PayHere.CancelURL)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, 15, cfg.SessionPurgeIntervalMinute)
	assert.Equal(t, slog.LevelDebug, cfg.Telemetry.LogLevel)
	assert.True(t, cfg.PaymentsEnabled())
	assert.True(t, cfg.SMTPEnabled())
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad mode":       {"PAYHERE_MODE", "production"},
		"bad ttl":        {"SESSION_TTL_HOURS", "-1"},
		"bad smtp port":  {"SMTP_PORT", "smtp"},
		"bad purge":      {"SESSION_PURGE_INTERVAL_MINUTES", "0"},
		"admin no pass":  {"ADMIN_EMAIL", "admin@example.com"},
		"bad dependency": {"DEPENDENCY_TIMEOUT_SECONDS", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ADMIN_PASSWORD", "")
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := LoadConfig(t.TempDir() + "/missing.env")
	assert.NoError(t, err)
}
