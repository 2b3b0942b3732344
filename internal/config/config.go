// Package config defines the top-level configuration for the market-making
// bot and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MMBOT_* environment variables.
type Config struct {
	BingX     BingXConfig     `toml:"bingx"`
	Oracle    OracleConfig    `toml:"oracle"`
	Trading   TradingConfig   `toml:"trading"`
	Volume    VolumeConfig    `toml:"volume"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Redis     RedisConfig     `toml:"redis"`
	Notify    NotifyConfig    `toml:"notify"`
	LogLevel  string          `toml:"log_level"`
}

// BingXConfig holds the managed-venue API parameters.
type BingXConfig struct {
	BaseURL   string   `toml:"base_url"`
	ApiKey    string   `toml:"api_key"`
	ApiSecret string   `toml:"api_secret"`
	Timeout   duration `toml:"timeout"`
}

// OracleConfig holds the reference-price venue parameters.
type OracleConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
}

// TradingConfig holds the spread reconciler parameters.
type TradingConfig struct {
	Symbol           string   `toml:"symbol"`        // managed-venue pair, e.g. "LTO-USDT"
	OracleSymbol     string   `toml:"oracle_symbol"` // oracle pair, e.g. "LTOUSDT"
	OrderBookDepth   int      `toml:"order_book_depth"`
	LowSpread        float64  `toml:"low_spread"`
	HighSpread       float64  `toml:"high_spread"`
	MinBaseAmount    float64  `toml:"min_base_amount"`
	MinQuoteAmount   float64  `toml:"min_quote_amount"`
	BaseBudgetRatio  float64  `toml:"base_budget_ratio"`
	QuoteBudgetRatio float64  `toml:"quote_budget_ratio"`
	PriceDecimals    int      `toml:"price_decimals"`
	AmountDecimals   int      `toml:"amount_decimals"`
	UpdateInterval   duration `toml:"update_interval"`
	StaleAfter       duration `toml:"stale_after"`
}

// VolumeConfig holds the volume quoter parameters.
type VolumeConfig struct {
	Enabled        bool     `toml:"enabled"`
	MarginLower    float64  `toml:"margin_lower"`
	MarginUpper    float64  `toml:"margin_upper"`
	MinAmount      float64  `toml:"min_amount"`
	MaxAmount      float64  `toml:"max_amount"`
	UpdateInterval duration `toml:"update_interval"`
}

// RateLimitConfig holds the venue request-quota parameters.
type RateLimitConfig struct {
	MaxPerWindow  int      `toml:"max_per_window"`
	Window        duration `toml:"window"`
	MaxConcurrent int      `toml:"max_concurrent"`
	QueueSize     int      `toml:"queue_size"`
	DropOverflow  bool     `toml:"drop_overflow"`
}

// RedisConfig holds Redis connection parameters for the oracle ticker cache.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	TickerTTL  duration `toml:"ticker_ttl"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken  string   `toml:"telegram_token"`
	TelegramChatID string   `toml:"telegram_chat_id"`
	Events         []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		BingX: BingXConfig{
			BaseURL: "https://open-api.bingx.com",
			Timeout: duration{10 * time.Second},
		},
		Oracle: OracleConfig{
			BaseURL: "https://api.bybit.com",
			Timeout: duration{10 * time.Second},
		},
		Trading: TradingConfig{
			OrderBookDepth:   5,
			LowSpread:        0.02,
			HighSpread:       0.10,
			BaseBudgetRatio:  0.5,
			QuoteBudgetRatio: 0.5,
			PriceDecimals:    6,
			AmountDecimals:   2,
			UpdateInterval:   duration{time.Minute},
			StaleAfter:       duration{2 * time.Hour},
		},
		Volume: VolumeConfig{
			Enabled:        false,
			MarginLower:    0.3,
			MarginUpper:    0.7,
			UpdateInterval: duration{5 * time.Minute},
		},
		RateLimit: RateLimitConfig{
			MaxPerWindow:  100,
			Window:        duration{10 * time.Second},
			MaxConcurrent: 20,
			QueueSize:     64,
			DropOverflow:  false,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
			TickerTTL:  duration{5 * time.Second},
		},
		Notify: NotifyConfig{
			Events: []string{"startup", "stale_orders", "order_rejected", "round_failed"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// BingX
	if c.BingX.ApiKey == "" {
		errs = append(errs, "bingx: api_key must not be empty")
	}
	if c.BingX.ApiSecret == "" {
		errs = append(errs, "bingx: api_secret must not be empty")
	}
	if c.BingX.Timeout.Duration <= 0 {
		errs = append(errs, "bingx: timeout must be positive")
	}

	// Oracle
	if c.Oracle.BaseURL == "" {
		errs = append(errs, "oracle: base_url must not be empty")
	}
	if c.Oracle.Timeout.Duration <= 0 {
		errs = append(errs, "oracle: timeout must be positive")
	}

	// Trading
	if c.Trading.Symbol == "" {
		errs = append(errs, "trading: symbol must not be empty")
	}
	if !strings.Contains(c.Trading.Symbol, "-") {
		errs = append(errs, fmt.Sprintf("trading: symbol %q must be of the form BASE-QUOTE", c.Trading.Symbol))
	}
	if c.Trading.OracleSymbol == "" {
		errs = append(errs, "trading: oracle_symbol must not be empty")
	}
	if c.Trading.OrderBookDepth < 1 {
		errs = append(errs, "trading: order_book_depth must be >= 1")
	}
	if c.Trading.LowSpread <= 0 {
		errs = append(errs, "trading: low_spread must be > 0")
	}
	if c.Trading.HighSpread <= c.Trading.LowSpread {
		errs = append(errs, "trading: high_spread must exceed low_spread")
	}
	if c.Trading.MinBaseAmount <= 0 {
		errs = append(errs, "trading: min_base_amount must be > 0")
	}
	if c.Trading.MinQuoteAmount <= 0 {
		errs = append(errs, "trading: min_quote_amount must be > 0")
	}
	if c.Trading.BaseBudgetRatio < 0 || c.Trading.BaseBudgetRatio >= 1 {
		errs = append(errs, "trading: base_budget_ratio must be in [0, 1)")
	}
	if c.Trading.QuoteBudgetRatio < 0 || c.Trading.QuoteBudgetRatio >= 1 {
		errs = append(errs, "trading: quote_budget_ratio must be in [0, 1)")
	}
	if c.Trading.PriceDecimals < 1 {
		errs = append(errs, "trading: price_decimals must be >= 1")
	}
	if c.Trading.AmountDecimals < 1 {
		errs = append(errs, "trading: amount_decimals must be >= 1")
	}
	if c.Trading.UpdateInterval.Duration <= 0 {
		errs = append(errs, "trading: update_interval must be positive")
	}
	if c.Trading.StaleAfter.Duration <= 0 {
		errs = append(errs, "trading: stale_after must be positive")
	}

	// Volume
	if c.Volume.Enabled {
		if c.Volume.MarginLower < 0 || c.Volume.MarginLower > 1 {
			errs = append(errs, "volume: margin_lower must be in [0, 1]")
		}
		if c.Volume.MarginUpper < c.Volume.MarginLower || c.Volume.MarginUpper > 1 {
			errs = append(errs, "volume: margin_upper must be in [margin_lower, 1]")
		}
		if c.Volume.MinAmount <= 0 {
			errs = append(errs, "volume: min_amount must be > 0 when enabled")
		}
		if c.Volume.MaxAmount < c.Volume.MinAmount {
			errs = append(errs, "volume: max_amount must be >= min_amount")
		}
		if c.Volume.UpdateInterval.Duration <= 0 {
			errs = append(errs, "volume: update_interval must be positive")
		}
	}

	// Rate limit
	if c.RateLimit.MaxPerWindow < 1 {
		errs = append(errs, "rate_limit: max_per_window must be >= 1")
	}
	if c.RateLimit.Window.Duration <= 0 {
		errs = append(errs, "rate_limit: window must be positive")
	}
	if c.RateLimit.MaxConcurrent < 0 {
		errs = append(errs, "rate_limit: max_concurrent must be >= 0")
	}
	if c.RateLimit.QueueSize < 0 {
		errs = append(errs, "rate_limit: queue_size must be >= 0")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.TickerTTL.Duration <= 0 {
			errs = append(errs, "redis: ticker_ttl must be positive when enabled")
		}
	}

	// Notify — token and chat ID must be set together.
	tk := c.Notify.TelegramToken != ""
	ch := c.Notify.TelegramChatID != ""
	if tk != ch {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
