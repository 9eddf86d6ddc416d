package config_test

import (
	"attorneyhub/backend/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "local", cfg.EvidenceBackend)
	assert.True(t, cfg.MembershipProviderEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "s3ssion")
	t.Setenv("CSRF_SECRET", "csrf")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100123")
	t.Setenv("MEMBERSHIP_PROVIDER_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, int64(-100123), cfg.TelegramAdminChatID)
	assert.False(t, cfg.MembershipProviderEnabled)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "s3ssion")

	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrMissingSecret)
	assert.ErrorContains(t, err, "CSRF_SECRET")

	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "csrf")
	_, err = config.Load()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestLoad_DevelopmentGetsRandomCSRFSecret(t *testing.T) {
	t.Chdir(t.TempDir())

	a, err := config.Load()
	require.NoError(t, err)
	b, err := config.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, a.CSRFSecret)
	assert.NotEqual(t, a.CSRFSecret, b.CSRFSecret)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &config.Config{CORSOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}
