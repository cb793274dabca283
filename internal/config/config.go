// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Sources   []SourceConfig  `mapstructure:"sources"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Transfer  TransferConfig  `mapstructure:"transfer"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"` // json | text
}

// SourceConfig describes one exchange market-data source.
type SourceConfig struct {
	Name         string        `mapstructure:"name"`
	Kind         string        `mapstructure:"kind"` // binance | mexc | okx | bybit | gateio | kucoin
	BaseURL      string        `mapstructure:"base_url"`
	WSURL        string        `mapstructure:"ws_url"`
	Stream       bool          `mapstructure:"stream"`
	StaleTimeout time.Duration `mapstructure:"stale_timeout"`
	Timeout      time.Duration `mapstructure:"timeout"`
	QuoteAssets  []string      `mapstructure:"quote_assets"`
	Enabled      bool          `mapstructure:"enabled"`
}

// IdentityConfig configures asset identity resolution.
type IdentityConfig struct {
	Strategies    []string          `mapstructure:"strategies"` // static | pattern | lookup
	Static        map[string]string `mapstructure:"static"`     // symbol -> chain overrides
	Lookup        LookupConfig      `mapstructure:"lookup"`
	EVMRPC        map[string]string `mapstructure:"evm_rpc"` // chain -> rpc url
	VerifyOnChain bool              `mapstructure:"verify_on_chain"`
}

// LookupConfig configures the external contract lookup.
type LookupConfig struct {
	Enabled         bool           `mapstructure:"enabled"`
	Providers       []string       `mapstructure:"providers"` // coingecko | dexscreener
	CoinGeckoURL    string         `mapstructure:"coingecko_url"`
	CoinGeckoAPIKey string         `mapstructure:"coingecko_api_key"`
	DexScreenerURL  string         `mapstructure:"dexscreener_url"`
	RateLimits      map[string]int `mapstructure:"rate_limits"` // provider -> requests per minute
	Timeout         time.Duration  `mapstructure:"timeout"`
	CacheTTL        time.Duration  `mapstructure:"cache_ttl"`
	MaxCandidates   int            `mapstructure:"max_candidates"`
	MinLiquidityUSD float64        `mapstructure:"min_liquidity_usd"`
	Concurrency     int            `mapstructure:"concurrency"`
}

// TransferConfig configures network availability lookups.
type TransferConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	NetworkInfoTTL time.Duration     `mapstructure:"network_info_ttl"`
	Timeout        time.Duration     `mapstructure:"timeout"`
	Providers      map[string]string `mapstructure:"providers"` // exchange -> base url
}

// TransferCostConfig is one (from, to) chain cost entry.
type TransferCostConfig struct {
	From string  `mapstructure:"from"`
	To   string  `mapstructure:"to"`
	Cost float64 `mapstructure:"cost"`
}

// ArbitrageConfig holds arbitrage detection configuration.
type ArbitrageConfig struct {
	MinProfitPct         float64              `mapstructure:"min_profit_pct"`
	MaxProfitPct         float64              `mapstructure:"max_profit_pct"`
	MinVolume            float64              `mapstructure:"min_volume"`
	DefaultFeePct        float64              `mapstructure:"default_fee_pct"`
	Fees                 map[string]float64   `mapstructure:"fees"` // exchange -> fee percent
	DefaultTransferCost  float64              `mapstructure:"default_transfer_cost"`
	TransferCosts        []TransferCostConfig `mapstructure:"transfer_costs"`
	MaxResults           int                  `mapstructure:"max_results"`
	Workers              int                  `mapstructure:"workers"`
	AnomalySourceRatio   float64              `mapstructure:"anomaly_source_ratio"`
	Interval             time.Duration        `mapstructure:"interval"`
	AllowSymbolOnlyMatch bool                 `mapstructure:"allow_symbol_only_match"`
	TUIMode              bool                 `mapstructure:"-"` // Set at runtime, not from config file
}

// RedisConfig configures the shared contract cache tier.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig configures the contract registry.
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"` // zipkin | otlp-grpc | otlp-http | console | none
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"` // key=value[,key=value]
	Insecure       bool   `mapstructure:"insecure"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// HealthConfig configures the health and metrics HTTP endpoint.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// MinProfitDecimal returns the minimum profit percentage.
func (c *ArbitrageConfig) MinProfitDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPct)
}

// MaxProfitDecimal returns the maximum profit percentage.
func (c *ArbitrageConfig) MaxProfitDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxProfitPct)
}

// MinVolumeDecimal returns the minimum volume.
func (c *ArbitrageConfig) MinVolumeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinVolume)
}

// FeesDecimal returns per-exchange fee percentages.
func (c *ArbitrageConfig) FeesDecimal() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c.Fees))
	for k, v := range c.Fees {
		out[strings.ToLower(k)] = decimal.NewFromFloat(v)
	}
	return out
}

// StaticChains returns the static table overrides with upper-cased symbols.
func (c *IdentityConfig) StaticChains() map[string]asset.Chain {
	out := make(map[string]asset.Chain, len(c.Static))
	for sym, chain := range c.Static {
		out[strings.ToUpper(sym)] = asset.NormalizeChain(chain)
	}
	return out
}

// EnabledSources returns sources with enabled set.
func (c *Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithCause(err), apperror.WithContext("failed to read config"))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err), apperror.WithContext("failed to unmarshal config"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	_ = v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	_ = v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	_ = v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("app.log_format", "ARB_LOG_FORMAT", "LOG_FORMAT")

	// Identity
	_ = v.BindEnv("identity.lookup.coingecko_api_key", "ARB_COINGECKO_API_KEY", "COINGECKO_API_KEY")
	_ = v.BindEnv("identity.verify_on_chain", "ARB_VERIFY_ON_CHAIN")
	_ = v.BindEnv("identity.evm_rpc.ethereum", "ARB_ETH_HTTP_URL", "ETH_HTTP_URL")

	// Arbitrage
	_ = v.BindEnv("arbitrage.min_profit_pct", "ARB_MIN_PROFIT_PCT")
	_ = v.BindEnv("arbitrage.max_profit_pct", "ARB_MAX_PROFIT_PCT")
	_ = v.BindEnv("arbitrage.min_volume", "ARB_MIN_VOLUME")
	_ = v.BindEnv("arbitrage.interval", "ARB_INTERVAL")

	// Storage
	_ = v.BindEnv("redis.enabled", "ARB_REDIS_ENABLED")
	_ = v.BindEnv("redis.addr", "ARB_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "ARB_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("postgres.enabled", "ARB_POSTGRES_ENABLED")
	_ = v.BindEnv("postgres.dsn", "ARB_DATABASE_URL", "DATABASE_URL")

	// Telemetry
	_ = v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	_ = v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	_ = v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("telemetry.otlp_headers", "ARB_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbitrage-scanner")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Sources
	v.SetDefault("sources", []map[string]any{
		{"name": "binance", "kind": "binance", "base_url": "https://api.binance.com", "ws_url": "wss://stream.binance.com:9443", "timeout": "10s", "stale_timeout": "30s", "quote_assets": []string{"USDT"}, "enabled": true},
		{"name": "okx", "kind": "okx", "base_url": "https://www.okx.com", "timeout": "10s", "quote_assets": []string{"USDT"}, "enabled": true},
		{"name": "bybit", "kind": "bybit", "base_url": "https://api.bybit.com", "timeout": "10s", "quote_assets": []string{"USDT"}, "enabled": true},
		{"name": "gateio", "kind": "gateio", "base_url": "https://api.gateio.ws", "timeout": "10s", "quote_assets": []string{"USDT"}, "enabled": true},
		{"name": "kucoin", "kind": "kucoin", "base_url": "https://api.kucoin.com", "timeout": "10s", "quote_assets": []string{"USDT"}, "enabled": true},
		{"name": "mexc", "kind": "mexc", "base_url": "https://api.mexc.com", "timeout": "10s", "quote_assets": []string{"USDT"}, "enabled": false},
	})

	// Identity
	v.SetDefault("identity.strategies", []string{"static", "pattern", "lookup"})
	v.SetDefault("identity.lookup.enabled", true)
	v.SetDefault("identity.lookup.providers", []string{"coingecko", "dexscreener"})
	v.SetDefault("identity.lookup.coingecko_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("identity.lookup.dexscreener_url", "https://api.dexscreener.com")
	v.SetDefault("identity.lookup.rate_limits", map[string]int{"coingecko": 10, "dexscreener": 300})
	v.SetDefault("identity.lookup.timeout", "10s")
	v.SetDefault("identity.lookup.cache_ttl", "24h")
	v.SetDefault("identity.lookup.max_candidates", 5)
	v.SetDefault("identity.lookup.min_liquidity_usd", 10000)
	v.SetDefault("identity.lookup.concurrency", 4)
	v.SetDefault("identity.verify_on_chain", false)

	// Transfer
	v.SetDefault("transfer.enabled", true)
	v.SetDefault("transfer.network_info_ttl", "1h")
	v.SetDefault("transfer.timeout", "10s")
	v.SetDefault("transfer.providers", map[string]string{
		"gateio": "https://api.gateio.ws",
		"kucoin": "https://api.kucoin.com",
	})

	// Arbitrage defaults
	v.SetDefault("arbitrage.min_profit_pct", 0.5)
	v.SetDefault("arbitrage.max_profit_pct", 110)
	v.SetDefault("arbitrage.min_volume", 100)
	v.SetDefault("arbitrage.default_fee_pct", 0.2)
	v.SetDefault("arbitrage.fees", map[string]float64{
		"binance": 0.1,
		"okx":     0.1,
		"bybit":   0.1,
		"gateio":  0.2,
		"kucoin":  0.1,
		"mexc":    0.05,
	})
	v.SetDefault("arbitrage.default_transfer_cost", 1.0)
	v.SetDefault("arbitrage.max_results", 50)
	v.SetDefault("arbitrage.workers", 8)
	v.SetDefault("arbitrage.anomaly_source_ratio", 0.5)
	v.SetDefault("arbitrage.interval", "30s")
	v.SetDefault("arbitrage.allow_symbol_only_match", true)

	// Storage
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.max_conns", 4)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbitrage-scanner")
	v.SetDefault("telemetry.trace_provider", "none")
	v.SetDefault("telemetry.metrics_enabled", true)

	// Health
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 9090)
}

var knownSourceKinds = map[string]struct{}{
	"binance": {}, "mexc": {}, "okx": {}, "bybit": {}, "gateio": {}, "kucoin": {},
}

// Validate checks thresholds and required settings.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return apperror.New(apperror.CodeConfigurationError, apperror.WithContext(fmt.Sprintf(format, args...)))
	}

	a := c.Arbitrage
	if a.MinProfitPct < 0 {
		return invalid("arbitrage.min_profit_pct must be >= 0, got %v", a.MinProfitPct)
	}
	if a.MaxProfitPct <= a.MinProfitPct {
		return invalid("arbitrage.max_profit_pct (%v) must exceed min_profit_pct (%v)", a.MaxProfitPct, a.MinProfitPct)
	}
	if a.MinVolume < 0 {
		return invalid("arbitrage.min_volume must be >= 0, got %v", a.MinVolume)
	}
	if a.DefaultFeePct < 0 || a.DefaultFeePct >= 100 {
		return invalid("arbitrage.default_fee_pct out of range: %v", a.DefaultFeePct)
	}
	for ex, fee := range a.Fees {
		if fee < 0 || fee >= 100 {
			return invalid("arbitrage.fees.%s out of range: %v", ex, fee)
		}
	}
	if a.DefaultTransferCost < 0 {
		return invalid("arbitrage.default_transfer_cost must be >= 0")
	}
	for _, tc := range a.TransferCosts {
		if tc.Cost < 0 {
			return invalid("arbitrage.transfer_costs %s->%s must be >= 0", tc.From, tc.To)
		}
	}
	if a.AnomalySourceRatio <= 0 || a.AnomalySourceRatio > 1 {
		return invalid("arbitrage.anomaly_source_ratio must be in (0, 1], got %v", a.AnomalySourceRatio)
	}
	if a.Workers <= 0 {
		return invalid("arbitrage.workers must be positive")
	}

	if len(c.EnabledSources()) == 0 {
		return invalid("at least one source must be enabled")
	}
	seen := make(map[string]struct{}, len(c.Sources))
	for _, s := range c.EnabledSources() {
		if _, ok := knownSourceKinds[s.Kind]; !ok {
			return invalid("source %q has unknown kind %q", s.Name, s.Kind)
		}
		if s.Name == "" || s.BaseURL == "" {
			return invalid("source %q requires name and base_url", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return invalid("duplicate source name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	for _, st := range c.Identity.Strategies {
		switch st {
		case "static", "pattern", "lookup":
		default:
			return invalid("identity.strategies: unknown strategy %q", st)
		}
	}
	for sym, chain := range c.Identity.Static {
		if !asset.NormalizeChain(chain).IsKnown() {
			return invalid("identity.static.%s: unknown chain %q", sym, chain)
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return invalid("redis.addr is required when redis is enabled")
	}
	if c.Postgres.Enabled && c.Postgres.DSN == "" {
		return invalid("postgres.dsn is required when postgres is enabled")
	}
	return nil
}
