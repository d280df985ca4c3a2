package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Mode selects which gateway environment the service talks to.
const (
	ModeTest = "test"
	ModeLive = "live"
)

// Config holds application configuration loaded from the environment.
// It is constructed once at startup and never mutated afterwards.
type Config struct {
	APIKey             string
	MerchantAccount    string
	ClientKey          string
	HMACKey            string
	EnvironmentMode    string
	ServerHost         string
	ServerPort         string
	GatewayBaseURL     string
	PublicBaseURL      string
	CORSAllowedOrigins []string
	GatewayTimeout     time.Duration
	WebhookMaxBody     int64
	WebhookRateLimit   int
	WebhookRateWindow  time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		APIKey:             k.String("API_KEY"),
		MerchantAccount:    k.String("MERCHANT_ACCOUNT"),
		ClientKey:          k.String("CLIENT_KEY"),
		HMACKey:            k.String("HMAC_KEY"),
		EnvironmentMode:    valueOrDefault(k.String("ENVIRONMENT_MODE"), ModeTest),
		ServerHost:         valueOrDefault(k.String("SERVER_HOST"), "0.0.0.0"),
		ServerPort:         valueOrDefault(k.String("SERVER_PORT"), "8080"),
		GatewayBaseURL:     strings.TrimSpace(k.String("GATEWAY_BASE_URL")),
		PublicBaseURL:      strings.TrimSpace(k.String("PUBLIC_BASE_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		GatewayTimeout:     parseDuration(k.String("GATEWAY_TIMEOUT"), "0"),
		WebhookMaxBody:     parseInt64(k.String("WEBHOOK_MAX_BODY_BYTES"), 1<<20),
		WebhookRateLimit:   int(parseInt64(k.String("WEBHOOK_RATE_LIMIT"), 0)),
		WebhookRateWindow:  parseDuration(k.String("WEBHOOK_RATE_WINDOW"), "1m"),
	}

	if cfg.APIKey == "" {
		return nil, errors.New("API_KEY is required")
	}
	if cfg.MerchantAccount == "" {
		return nil, errors.New("MERCHANT_ACCOUNT is required")
	}
	switch cfg.EnvironmentMode {
	case ModeTest, ModeLive:
	default:
		return nil, fmt.Errorf("ENVIRONMENT_MODE must be %q or %q, got %q", ModeTest, ModeLive, cfg.EnvironmentMode)
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + strings.TrimPrefix(cfg.ServerPort, ":")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.ServerPort)
	if port == "" {
		port = "8080"
	}
	port = strings.TrimPrefix(port, ":")
	return c.ServerHost + ":" + port
}

// Live reports whether the service targets the live gateway environment.
func (c *Config) Live() bool {
	return c.EnvironmentMode == ModeLive
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
