package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"API_KEY":          "test_api_key",
		"MERCHANT_ACCOUNT": "TestMerchant",
		"CLIENT_KEY":       "",
		"HMAC_KEY":         "",
		"ENVIRONMENT_MODE": "",
		"SERVER_HOST":      "",
		"SERVER_PORT":      "",
		"GATEWAY_BASE_URL": "",
		"PUBLIC_BASE_URL":  "",
		"GATEWAY_TIMEOUT":  "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, "test_api_key", cfg.APIKey)
	require.Equal(t, "TestMerchant", cfg.MerchantAccount)
	require.Equal(t, config.ModeTest, cfg.EnvironmentMode)
	require.False(t, cfg.Live())
	require.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	require.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	require.Equal(t, time.Duration(0), cfg.GatewayTimeout)
	require.Equal(t, int64(1<<20), cfg.WebhookMaxBody)
}

func TestLoadRequiredFields(t *testing.T) {
	env := baseEnv()
	env["API_KEY"] = ""
	_, err := config.LoadForTests(env)
	require.ErrorContains(t, err, "API_KEY")

	env = baseEnv()
	env["MERCHANT_ACCOUNT"] = ""
	_, err = config.LoadForTests(env)
	require.ErrorContains(t, err, "MERCHANT_ACCOUNT")
}

func TestLoadEnvironmentMode(t *testing.T) {
	env := baseEnv()
	env["ENVIRONMENT_MODE"] = "live"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.True(t, cfg.Live())

	env["ENVIRONMENT_MODE"] = "staging"
	_, err = config.LoadForTests(env)
	require.ErrorContains(t, err, "ENVIRONMENT_MODE")
}

func TestHTTPAddr(t *testing.T) {
	env := baseEnv()
	env["SERVER_HOST"] = "127.0.0.1"
	env["SERVER_PORT"] = ":9000"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr())
	require.Equal(t, "http://localhost:9000", cfg.PublicBaseURL)
}

func TestGatewayTimeoutParsing(t *testing.T) {
	env := baseEnv()
	env["GATEWAY_TIMEOUT"] = "15s"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, cfg.GatewayTimeout)

	env["GATEWAY_TIMEOUT"] = "not-a-duration"
	cfg, err = config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), cfg.GatewayTimeout)
}
