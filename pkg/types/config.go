package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is the top-level YAML configuration for both the backtest and the
// live driver.
type Config struct {
	Data struct {
		IndexTicker string `yaml:"index_ticker"`
		LLETicker   string `yaml:"lle_ticker"`
		IETicker    string `yaml:"ie_ticker"`
		IndexPath   string `yaml:"index_path"`
		LLEPath     string `yaml:"lle_path"`
		IEPath      string `yaml:"ie_path"`
	} `yaml:"data"`

	Backtest struct {
		StartDate       string  `yaml:"start_date"`
		EndDate         string  `yaml:"end_date"`
		InitialCapital  float64 `yaml:"initial_capital"`
		WarmupDays      int     `yaml:"warmup_days"`
		OutputPath      string  `yaml:"output_path"`
	} `yaml:"backtest"`

	Broker struct {
		APIKey    string `yaml:"api_key"`
		SecretKey string `yaml:"secret_key"`
		Paper     bool   `yaml:"paper"`
	} `yaml:"broker"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Enabled  bool   `yaml:"enabled"`
	} `yaml:"telegram"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`
}

// BacktestConfig is the runner's own parameter set, decoupled from the YAML
// document shape so internal/backtest has no dependency on config parsing.
type BacktestConfig struct {
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital decimal.Decimal
	WarmupDays     int
}

// DefaultWarmupDays is the minimum lookback for the longest-lookback
// indicator (250-day SMA) plus a safety buffer.
const DefaultWarmupDays = 260

// DefaultInitialCapital is used when a config omits one.
func DefaultInitialCapital() decimal.Decimal {
	return decimal.NewFromInt(100000)
}
