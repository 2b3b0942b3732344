package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.BingX.ApiKey = "key"
	cfg.BingX.ApiSecret = "secret"
	cfg.Trading.Symbol = "LTO-USDT"
	cfg.Trading.OracleSymbol = "LTOUSDT"
	cfg.Trading.MinBaseAmount = 50
	cfg.Trading.MinQuoteAmount = 5
	return cfg
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "bingx: api_key")
	assert.Contains(t, msg, "bingx: api_secret")
	assert.Contains(t, msg, "trading: symbol")
	assert.Contains(t, msg, "trading: min_base_amount")
}

func TestValidateRejectsBadSpreads(t *testing.T) {
	cfg := validConfig()
	cfg.Trading.LowSpread = 0.10
	cfg.Trading.HighSpread = 0.02
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "high_spread")
}

func TestValidateRejectsHalfConfiguredTelegram(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.TelegramToken = "token"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
}

func TestValidateVolumeOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Volume.Enabled = false
	cfg.Volume.MinAmount = 0
	require.NoError(t, cfg.Validate())

	cfg.Volume.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume: min_amount")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[bingx]
api_key = "file-key"
api_secret = "file-secret"

[trading]
symbol = "LTO-USDT"
oracle_symbol = "LTOUSDT"
min_base_amount = 50.0
min_quote_amount = 5.0
update_interval = "30s"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "file-key", cfg.BingX.ApiKey)
	assert.Equal(t, 30*time.Second, cfg.Trading.UpdateInterval.Duration)
	// Untouched fields keep their defaults.
	assert.Equal(t, 100, cfg.RateLimit.MaxPerWindow)
	assert.Equal(t, 2*time.Hour, cfg.Trading.StaleAfter.Duration)

	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[bingx]
api_key = "file-key"
api_secret = "file-secret"
`), 0o600))

	t.Setenv("MMBOT_BINGX_API_KEY", "env-key")
	t.Setenv("MMBOT_TRADING_SYMBOL", "BTC-USDT")
	t.Setenv("MMBOT_TRADING_UPDATE_INTERVAL", "45s")
	t.Setenv("MMBOT_REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.BingX.ApiKey)
	assert.Equal(t, "file-secret", cfg.BingX.ApiSecret)
	assert.Equal(t, "BTC-USDT", cfg.Trading.Symbol)
	assert.Equal(t, 45*time.Second, cfg.Trading.UpdateInterval.Duration)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Password = "hunter2"
	cfg.Notify.TelegramToken = "tg-token"
	cfg.Notify.TelegramChatID = "42"

	out := RedactedConfig(&cfg)
	assert.Equal(t, redacted, out.BingX.ApiKey)
	assert.Equal(t, redacted, out.BingX.ApiSecret)
	assert.Equal(t, redacted, out.Redis.Password)
	assert.Equal(t, redacted, out.Notify.TelegramToken)

	// Originals are untouched.
	assert.Equal(t, "key", cfg.BingX.ApiKey)

	// Empty secrets stay empty rather than gaining a placeholder.
	empty := validConfig()
	assert.Empty(t, RedactedConfig(&empty).Redis.Password)
}
