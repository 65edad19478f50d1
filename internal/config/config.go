package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Ledger    LedgerConfig    `yaml:"ledger" mapstructure:"ledger"`
	FX        FXConfig        `yaml:"fx" mapstructure:"fx"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Aggregate AggregateConfig `yaml:"aggregate" mapstructure:"aggregate"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Profit    ProfitConfig    `yaml:"profit" mapstructure:"profit"`
	Analyst   AnalystConfig   `yaml:"analyst" mapstructure:"analyst"`
	Decision  DecisionConfig  `yaml:"decision" mapstructure:"decision"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LedgerConfig configures how raw ledger sheets are read and normalized.
type LedgerConfig struct {
	Sales    SalesColumns    `yaml:"sales" mapstructure:"sales"`
	Purchase PurchaseColumns `yaml:"purchase" mapstructure:"purchase"`
	// InvalidDeliveryYear marks placeholder delivery dates exported by the ERP.
	InvalidDeliveryYear int `yaml:"invalid_delivery_year" mapstructure:"invalid_delivery_year"`
}

// SalesColumns maps sales ledger fields to sheet headers.
type SalesColumns struct {
	Sheet         string `yaml:"sheet" mapstructure:"sheet"`
	Date          string `yaml:"date" mapstructure:"date"`
	TotalUSD      string `yaml:"total_usd" mapstructure:"total_usd"`
	Material      string `yaml:"material" mapstructure:"material"`
	MaterialGroup string `yaml:"material_group" mapstructure:"material_group"`
	Quantity      string `yaml:"quantity" mapstructure:"quantity"`
	Unit          string `yaml:"unit" mapstructure:"unit"`
}

// PurchaseColumns maps purchase ledger fields to sheet headers.
type PurchaseColumns struct {
	Sheet         string `yaml:"sheet" mapstructure:"sheet"`
	OrderDate     string `yaml:"order_date" mapstructure:"order_date"`
	DeliveryDate  string `yaml:"delivery_date" mapstructure:"delivery_date"`
	Quantity      string `yaml:"quantity" mapstructure:"quantity"`
	Price         string `yaml:"price" mapstructure:"price"`
	Material      string `yaml:"material" mapstructure:"material"`
	MaterialGroup string `yaml:"material_group" mapstructure:"material_group"`
	Unit          string `yaml:"unit" mapstructure:"unit"`
	SupplierID    string `yaml:"supplier_id" mapstructure:"supplier_id"`
	SupplierName  string `yaml:"supplier_name" mapstructure:"supplier_name"`
	OrderID       string `yaml:"order_id" mapstructure:"order_id"`
}

// FXConfig configures the exchange-rate sheet.
type FXConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	Sheet      string `yaml:"sheet" mapstructure:"sheet"`
	DateColumn string `yaml:"date_column" mapstructure:"date_column"`
	RateColumn string `yaml:"rate_column" mapstructure:"rate_column"`
}

// FetchConfig configures remote ledger retrieval.
type FetchConfig struct {
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts      int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int    `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	TempDir          string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// AggregateConfig configures summary statistics.
type AggregateConfig struct {
	TrendEpsilon      float64 `yaml:"trend_epsilon" mapstructure:"trend_epsilon"`
	TopN              int     `yaml:"top_n" mapstructure:"top_n"`
	LongLeadDays      float64 `yaml:"long_lead_days" mapstructure:"long_lead_days"`
	LeadNormCapDays   float64 `yaml:"lead_norm_cap_days" mapstructure:"lead_norm_cap_days"`
	ParallelThreshold int     `yaml:"parallel_threshold" mapstructure:"parallel_threshold"`
}

// MatchConfig configures the matching engine.
type MatchConfig struct {
	// GroupSuffixLen is the number of trailing characters dropped from a
	// purchase group code to derive its group key.
	GroupSuffixLen int `yaml:"group_suffix_len" mapstructure:"group_suffix_len"`
}

// ProfitConfig configures the profitability engine.
type ProfitConfig struct {
	CanonicalUnit string `yaml:"canonical_unit" mapstructure:"canonical_unit"`
	TopN          int    `yaml:"top_n" mapstructure:"top_n"`
}

// AnalystConfig configures the rule-based sales and purchase analysts.
type AnalystConfig struct {
	Locale                 string  `yaml:"locale" mapstructure:"locale"`
	PeakIndex              float64 `yaml:"peak_index" mapstructure:"peak_index"`
	LowIndex               float64 `yaml:"low_index" mapstructure:"low_index"`
	RiskySupplierScore     float64 `yaml:"risky_supplier_score" mapstructure:"risky_supplier_score"`
	StockoutLeadDays       float64 `yaml:"stockout_lead_days" mapstructure:"stockout_lead_days"`
	LargeOrders            int     `yaml:"large_orders" mapstructure:"large_orders"`
	PerformerCount         int     `yaml:"performer_count" mapstructure:"performer_count"`
	HighSalesRiskScore     float64 `yaml:"high_sales_risk_score" mapstructure:"high_sales_risk_score"`
	LeadTimeActionScore    float64 `yaml:"lead_time_action_score" mapstructure:"lead_time_action_score"`
	LowVolatilityCV        float64 `yaml:"low_volatility_cv" mapstructure:"low_volatility_cv"`
	MediumVolatilityCV     float64 `yaml:"medium_volatility_cv" mapstructure:"medium_volatility_cv"`
	ShortLeadTimeDays      float64 `yaml:"short_lead_time_days" mapstructure:"short_lead_time_days"`
	AcceptableLeadTimeDays float64 `yaml:"acceptable_lead_time_days" mapstructure:"acceptable_lead_time_days"`
}

// DecisionConfig configures the risk/decision synthesizer.
type DecisionConfig struct {
	RiskRatio               float64  `yaml:"risk_ratio" mapstructure:"risk_ratio"`
	RiskTrendGate           string   `yaml:"risk_trend_gate" mapstructure:"risk_trend_gate"`
	PriceRiskTrendGate      string   `yaml:"price_risk_trend_gate" mapstructure:"price_risk_trend_gate"`
	PriceVolatilityKeywords []string `yaml:"price_volatility_keywords" mapstructure:"price_volatility_keywords"`
	MaxSuppliers            int      `yaml:"max_suppliers" mapstructure:"max_suppliers"`
	DedupeCritical          bool     `yaml:"dedupe_critical" mapstructure:"dedupe_critical"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; values already present in the environment win.
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Defaults returns the built-in configuration without reading files or the
// environment.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are plain scalars and slices; decoding them cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("metrics.enabled", true)

	v.SetDefault("ledger.invalid_delivery_year", 1975)
	v.SetDefault("ledger.sales.sheet", "IASSALHEADLIST")
	v.SetDefault("ledger.sales.date", "Başlangıç Tarihi")
	v.SetDefault("ledger.sales.total_usd", "Genel Toplam (USD)")
	v.SetDefault("ledger.sales.material", "Malzeme")
	v.SetDefault("ledger.sales.material_group", "MalKodGrup")
	v.SetDefault("ledger.sales.quantity", "Miktar")
	v.SetDefault("ledger.sales.unit", "Miktar Br.")
	v.SetDefault("ledger.purchase.sheet", "IASPURHEADLISTTREE")
	v.SetDefault("ledger.purchase.order_date", "Sipariş Tarihi")
	v.SetDefault("ledger.purchase.delivery_date", "Teslim Tarihi")
	v.SetDefault("ledger.purchase.quantity", "Sipariş Miktarı")
	v.SetDefault("ledger.purchase.price", "Fiyat")
	v.SetDefault("ledger.purchase.material", "Malzeme")
	v.SetDefault("ledger.purchase.material_group", "MalzemeGrup")
	v.SetDefault("ledger.purchase.unit", "Birim")
	v.SetDefault("ledger.purchase.supplier_id", "Tedarikçi Num.")
	v.SetDefault("ledger.purchase.supplier_name", "İsim")
	v.SetDefault("ledger.purchase.order_id", "Sipariş No")

	v.SetDefault("fx.date_column", "Tarih")
	v.SetDefault("fx.rate_column", "Efektif Satış Kuru")

	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.initial_backoff_ms", 500)

	v.SetDefault("aggregate.trend_epsilon", 1e-6)
	v.SetDefault("aggregate.top_n", 20)
	v.SetDefault("aggregate.long_lead_days", 30.0)
	v.SetDefault("aggregate.lead_norm_cap_days", 60.0)
	v.SetDefault("aggregate.parallel_threshold", 50000)

	v.SetDefault("match.group_suffix_len", 1)

	v.SetDefault("profit.canonical_unit", "AD")
	v.SetDefault("profit.top_n", 20)

	v.SetDefault("analyst.locale", "en")
	v.SetDefault("analyst.peak_index", 1.10)
	v.SetDefault("analyst.low_index", 0.90)
	v.SetDefault("analyst.risky_supplier_score", 60.0)
	v.SetDefault("analyst.stockout_lead_days", 30.0)
	v.SetDefault("analyst.large_orders", 5)
	v.SetDefault("analyst.performer_count", 5)
	v.SetDefault("analyst.high_sales_risk_score", 70.0)
	v.SetDefault("analyst.lead_time_action_score", 60.0)
	v.SetDefault("analyst.low_volatility_cv", 0.15)
	v.SetDefault("analyst.medium_volatility_cv", 0.30)
	v.SetDefault("analyst.short_lead_time_days", 15.0)
	v.SetDefault("analyst.acceptable_lead_time_days", 30.0)

	v.SetDefault("decision.risk_ratio", 0.7)
	v.SetDefault("decision.risk_trend_gate", "up")
	v.SetDefault("decision.price_risk_trend_gate", "down")
	v.SetDefault("decision.price_volatility_keywords", []string{"high", "yüksek"})
	v.SetDefault("decision.max_suppliers", 5)
	v.SetDefault("decision.dedupe_critical", true)
}

// Validate checks that the configuration is internally consistent for the
// given command mode ("run", "profit", "decide" or "serve").
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "run", "profit", "decide":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port must be > 0 and <= 65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Match.GroupSuffixLen < 0 {
		errs = append(errs, "match.group_suffix_len must be >= 0")
	}
	if strings.TrimSpace(c.Profit.CanonicalUnit) == "" {
		errs = append(errs, "profit.canonical_unit is required")
	}
	if c.Decision.RiskRatio <= 0 {
		errs = append(errs, fmt.Sprintf("decision.risk_ratio must be > 0, got %g", c.Decision.RiskRatio))
	}
	if c.Decision.MaxSuppliers < 0 {
		errs = append(errs, "decision.max_suppliers must be >= 0")
	}
	if c.Analyst.LowIndex > c.Analyst.PeakIndex {
		errs = append(errs, "analyst.low_index must be <= analyst.peak_index")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
