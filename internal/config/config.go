// Package config loads runtime settings and holds the fixed domain constants
// shared by the hub's services.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Secrets. SessionSecret verifies tokens issued by the host site.
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	CSRFSecret    string `mapstructure:"CSRF_SECRET"`
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`

	// Membership provider. When disabled every user resolves to the free tier.
	MembershipProviderEnabled bool `mapstructure:"MEMBERSHIP_PROVIDER_ENABLED"`

	// Admin notification channel.
	TelegramBotToken    string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `mapstructure:"TELEGRAM_ADMIN_CHAT_ID"`

	// Member notices.
	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASSWORD"`
	MailFrom string `mapstructure:"MAIL_FROM"`
	// AdminEmail receives admin notices when no Telegram chat is configured.
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`

	// Evidence storage: "local" or "s3".
	EvidenceBackend string `mapstructure:"EVIDENCE_BACKEND"`
	EvidenceDir     string `mapstructure:"EVIDENCE_DIR"`
	S3Bucket        string `mapstructure:"S3_BUCKET"`
	S3Region        string `mapstructure:"S3_REGION"`
	S3Endpoint      string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey     string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey     string `mapstructure:"S3_SECRET_KEY"`

	// Site URLs used in redirects and notices.
	SiteName      string `mapstructure:"SITE_NAME"`
	SiteURL       string `mapstructure:"SITE_URL"`
	LoginURL      string `mapstructure:"LOGIN_URL"`
	DashboardURL  string `mapstructure:"DASHBOARD_URL"`
	PricingURL    string `mapstructure:"PRICING_URL"`
	AddListingURL string `mapstructure:"ADD_LISTING_URL"`
	LogoutURL     string `mapstructure:"LOGOUT_URL"`
	AdminURL      string `mapstructure:"ADMIN_URL"`
}

// ErrMissingSecret is returned when a production config lacks a signing secret.
var ErrMissingSecret = errors.New("missing secret")

var defaults = map[string]any{
	"APP_PORT":                    "8080",
	"ENV":                         "development",
	"DATABASE_URL":                "host=localhost user=user password=password dbname=attorneyhub port=5432 sslmode=disable",
	"MAX_REQUESTS_PER_MIN":        120,
	"CORS_ORIGINS":                "*",
	"REDIS_ADDR":                  "localhost:6379",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"SESSION_SECRET":              "",
	"CSRF_SECRET":                 "",
	"WEBHOOK_SECRET":              "",
	"MEMBERSHIP_PROVIDER_ENABLED": true,
	"TELEGRAM_BOT_TOKEN":          "",
	"TELEGRAM_ADMIN_CHAT_ID":      0,
	"SMTP_HOST":                   "",
	"SMTP_PORT":                   587,
	"SMTP_USER":                   "",
	"SMTP_PASSWORD":               "",
	"MAIL_FROM":                   "no-reply@localhost",
	"ADMIN_EMAIL":                 "",
	"EVIDENCE_BACKEND":            "local",
	"EVIDENCE_DIR":                "./data/evidence",
	"S3_BUCKET":                   "",
	"S3_REGION":                   "us-east-1",
	"S3_ENDPOINT":                 "",
	"S3_ACCESS_KEY":               "",
	"S3_SECRET_KEY":               "",
	"SITE_NAME":                   "Attorney Accountability Hub",
	"SITE_URL":                    "http://localhost:8080",
	"LOGIN_URL":                   "/login",
	"DASHBOARD_URL":               "/user-dashboard",
	"PRICING_URL":                 "/plans/pricing/",
	"ADD_LISTING_URL":             "/add-listing/",
	"LOGOUT_URL":                  "/logout",
	"ADMIN_URL":                   "/admin",
}

// Load reads config.yaml (if present) from the working directory or ./config,
// overlays environment variables and fills in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.checkSecrets(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// checkSecrets requires both signing secrets in production. Elsewhere a
// missing CSRF secret is replaced by a random one, so form tokens do not
// survive a restart.
func (c *Config) checkSecrets() error {
	if c.IsProduction() {
		if c.SessionSecret == "" {
			return fmt.Errorf("%w: SESSION_SECRET", ErrMissingSecret)
		}
		if c.CSRFSecret == "" {
			return fmt.Errorf("%w: CSRF_SECRET", ErrMissingSecret)
		}
		return nil
	}
	if c.CSRFSecret == "" {
		c.CSRFSecret = rand.Text()
	}
	return nil
}

// IsProduction checks if the environment is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
