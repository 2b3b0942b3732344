package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MMBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MMBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── BingX ──
	setStr(&cfg.BingX.BaseURL, "MMBOT_BINGX_BASE_URL")
	setStr(&cfg.BingX.ApiKey, "MMBOT_BINGX_API_KEY")
	setStr(&cfg.BingX.ApiSecret, "MMBOT_BINGX_API_SECRET")
	setDuration(&cfg.BingX.Timeout, "MMBOT_BINGX_TIMEOUT")

	// ── Oracle ──
	setStr(&cfg.Oracle.BaseURL, "MMBOT_ORACLE_BASE_URL")
	setDuration(&cfg.Oracle.Timeout, "MMBOT_ORACLE_TIMEOUT")

	// ── Trading ──
	setStr(&cfg.Trading.Symbol, "MMBOT_TRADING_SYMBOL")
	setStr(&cfg.Trading.OracleSymbol, "MMBOT_TRADING_ORACLE_SYMBOL")
	setInt(&cfg.Trading.OrderBookDepth, "MMBOT_TRADING_ORDER_BOOK_DEPTH")
	setFloat64(&cfg.Trading.LowSpread, "MMBOT_TRADING_LOW_SPREAD")
	setFloat64(&cfg.Trading.HighSpread, "MMBOT_TRADING_HIGH_SPREAD")
	setFloat64(&cfg.Trading.MinBaseAmount, "MMBOT_TRADING_MIN_BASE_AMOUNT")
	setFloat64(&cfg.Trading.MinQuoteAmount, "MMBOT_TRADING_MIN_QUOTE_AMOUNT")
	setFloat64(&cfg.Trading.BaseBudgetRatio, "MMBOT_TRADING_BASE_BUDGET_RATIO")
	setFloat64(&cfg.Trading.QuoteBudgetRatio, "MMBOT_TRADING_QUOTE_BUDGET_RATIO")
	setInt(&cfg.Trading.PriceDecimals, "MMBOT_TRADING_PRICE_DECIMALS")
	setInt(&cfg.Trading.AmountDecimals, "MMBOT_TRADING_AMOUNT_DECIMALS")
	setDuration(&cfg.Trading.UpdateInterval, "MMBOT_TRADING_UPDATE_INTERVAL")
	setDuration(&cfg.Trading.StaleAfter, "MMBOT_TRADING_STALE_AFTER")

	// ── Volume ──
	setBool(&cfg.Volume.Enabled, "MMBOT_VOLUME_ENABLED")
	setFloat64(&cfg.Volume.MarginLower, "MMBOT_VOLUME_MARGIN_LOWER")
	setFloat64(&cfg.Volume.MarginUpper, "MMBOT_VOLUME_MARGIN_UPPER")
	setFloat64(&cfg.Volume.MinAmount, "MMBOT_VOLUME_MIN_AMOUNT")
	setFloat64(&cfg.Volume.MaxAmount, "MMBOT_VOLUME_MAX_AMOUNT")
	setDuration(&cfg.Volume.UpdateInterval, "MMBOT_VOLUME_UPDATE_INTERVAL")

	// ── Rate limit ──
	setInt(&cfg.RateLimit.MaxPerWindow, "MMBOT_RATE_LIMIT_MAX_PER_WINDOW")
	setDuration(&cfg.RateLimit.Window, "MMBOT_RATE_LIMIT_WINDOW")
	setInt(&cfg.RateLimit.MaxConcurrent, "MMBOT_RATE_LIMIT_MAX_CONCURRENT")
	setInt(&cfg.RateLimit.QueueSize, "MMBOT_RATE_LIMIT_QUEUE_SIZE")
	setBool(&cfg.RateLimit.DropOverflow, "MMBOT_RATE_LIMIT_DROP_OVERFLOW")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "MMBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "MMBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MMBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MMBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MMBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MMBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MMBOT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.TickerTTL, "MMBOT_REDIS_TICKER_TTL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MMBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MMBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Events, "MMBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "MMBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
