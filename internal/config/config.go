// Package config loads and validates the gateway configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// FeeConfig tunes the priority-fee estimator and the escalation loop.
// All fee values are in micro-lamports per compute unit unless noted.
type FeeConfig struct {
	MinimumFee        uint64   `mapstructure:"minimum_fee"`        // lamports, whole-transaction floor
	ComputeUnits      uint32   `mapstructure:"compute_units"`      // compute unit budget per swap
	Percentile        float64  `mapstructure:"percentile"`         // 0 < p <= 1, sample pick
	CacheWindowMs     int      `mapstructure:"cache_window_ms"`    // estimator cache lifetime
	ReferenceAccounts []string `mapstructure:"reference_accounts"` // high-traffic accounts sampled for fees
	Multiplier        float64  `mapstructure:"multiplier"`         // geometric escalation factor, > 1
	CeilingFee        uint64   `mapstructure:"ceiling_fee"`        // escalation stops above this
	ConfirmRetries    int      `mapstructure:"confirm_retries"`    // confirm attempts per fee level
	ConfirmTimeoutMs  int      `mapstructure:"confirm_timeout_ms"` // deadline per confirm attempt
	PollIntervalMs    int      `mapstructure:"poll_interval_ms"`   // status poll cadence
	RetryIntervalMs   int      `mapstructure:"retry_interval_ms"`  // broadcast retry pause
	HeightTolerance   uint64   `mapstructure:"height_tolerance"`   // slots past the validity ceiling still attempted
}

// ConnectorConfig holds aggregator endpoints and defaults.
type ConnectorConfig struct {
	QuoteURL           string `mapstructure:"quote_url"`
	SwapURL            string `mapstructure:"swap_url"`
	DefaultSlippageBps uint16 `mapstructure:"default_slippage_bps"`
	RequestTimeoutMs   int    `mapstructure:"request_timeout_ms"`
}

type Config struct {
	Network       string          `mapstructure:"network"`
	RPCList       []string        `mapstructure:"rpc_list"`
	WalletFile    string          `mapstructure:"wallet_file"`
	TokenListFile string          `mapstructure:"token_list_file"`
	LogFile       string          `mapstructure:"log_file"`
	DebugLogging  bool            `mapstructure:"debug_logging"`
	Fees          FeeConfig       `mapstructure:"fees"`
	Connector     ConnectorConfig `mapstructure:"connector"`
}

const (
	DefaultMinimumFee       = 5000
	DefaultComputeUnits     = 600_000
	DefaultPercentile       = 0.85
	DefaultCacheWindowMs    = 10_000
	DefaultMultiplier       = 2.0
	DefaultCeilingFee       = 10_000_000
	DefaultConfirmRetries   = 3
	DefaultConfirmTimeoutMs = 15_000
	DefaultPollIntervalMs   = 500
	DefaultRetryIntervalMs  = 1_000
	DefaultHeightTolerance  = 50
	DefaultSlippageBps      = 100
	DefaultRequestTimeout   = 10_000
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"network":                        "solana",
		"fees.minimum_fee":               DefaultMinimumFee,
		"fees.compute_units":             DefaultComputeUnits,
		"fees.percentile":                DefaultPercentile,
		"fees.cache_window_ms":           DefaultCacheWindowMs,
		"fees.multiplier":                DefaultMultiplier,
		"fees.ceiling_fee":               DefaultCeilingFee,
		"fees.confirm_retries":           DefaultConfirmRetries,
		"fees.confirm_timeout_ms":        DefaultConfirmTimeoutMs,
		"fees.poll_interval_ms":          DefaultPollIntervalMs,
		"fees.retry_interval_ms":         DefaultRetryIntervalMs,
		"fees.height_tolerance":          DefaultHeightTolerance,
		"connector.default_slippage_bps": DefaultSlippageBps,
		"connector.request_timeout_ms":   DefaultRequestTimeout,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURL(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	if cfg.Connector.QuoteURL != "" {
		if err := validateURL(cfg.Connector.QuoteURL, "http"); err != nil {
			return fmt.Errorf("invalid connector quote URL: %w", err)
		}
	}
	return validateFees(&cfg.Fees)
}

func validateFees(fees *FeeConfig) error {
	if fees.MinimumFee == 0 {
		return errors.New("fees.minimum_fee must be positive")
	}
	if fees.ComputeUnits == 0 {
		return errors.New("fees.compute_units must be positive")
	}
	if fees.Percentile <= 0 || fees.Percentile > 1 {
		return errors.New("fees.percentile must be in (0, 1]")
	}
	if fees.Multiplier <= 1 {
		return errors.New("fees.multiplier must be greater than 1")
	}
	if fees.CeilingFee == 0 {
		return errors.New("fees.ceiling_fee must be positive")
	}
	if fees.ConfirmRetries <= 0 {
		return errors.New("fees.confirm_retries must be positive")
	}
	return nil
}

func validateURL(rawURL, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return fmt.Errorf("scheme %q is not %s(s)", parsed.Scheme, protocol)
	}
	return nil
}
