// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Research  ResearchConfig  `mapstructure:"research"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// PricingConfig holds the stock pricing settings. Rates are whole-number
// percents, fees JPY unless suffixed otherwise. Saved user settings take
// precedence over these.
type PricingConfig struct {
	ExchangeRate                float64         `mapstructure:"exchange_rate"`
	TargetProfitMargin          float64         `mapstructure:"target_profit_margin"`
	MarketplaceFeeRate          float64         `mapstructure:"marketplace_fee_rate"`
	AdFeeRate                   float64         `mapstructure:"ad_fee_rate"`
	PaymentProcessorFeeRate     float64         `mapstructure:"payment_processor_fee_rate"`
	DutyRate                    float64         `mapstructure:"duty_rate"`
	VATRate                     float64         `mapstructure:"vat_rate"`
	DutyProcessingFeeRate       float64         `mapstructure:"duty_processing_fee_rate"`
	SafetyMarginRate            float64         `mapstructure:"safety_margin_rate"`
	BudgetCustomsHandlingFee    float64         `mapstructure:"budget_customs_handling_fee"`
	MinimumProcessingFee        float64         `mapstructure:"minimum_processing_fee"`
	MinimumProcessingFeeForeign float64         `mapstructure:"minimum_processing_fee_foreign"` // USD
	CrossBorderShippingDelta    float64         `mapstructure:"cross_border_shipping_delta"`
	Shipping                    ShippingConfig  `mapstructure:"shipping"`
	Surcharges                  SurchargeConfig `mapstructure:"surcharges"`
	RateTablePath               string          `mapstructure:"rate_table_path"` // empty uses the embedded table
}

// ShippingConfig holds the default shipping policy and parcel.
type ShippingConfig struct {
	Mode            string  `mapstructure:"mode"`
	FlatCost        float64 `mapstructure:"flat_cost"`
	Threshold       float64 `mapstructure:"threshold"`
	LowValueMethod  string  `mapstructure:"low_value_method"`
	HighValueMethod string  `mapstructure:"high_value_method"`
	MethodOverride  string  `mapstructure:"method_override"`
	WeightGrams     int64   `mapstructure:"weight_grams"`
	LengthCm        float64 `mapstructure:"length_cm"`
	WidthCm         float64 `mapstructure:"width_cm"`
	HeightCm        float64 `mapstructure:"height_cm"`
}

// SurchargeConfig holds the metered carrier add-ons.
type SurchargeConfig struct {
	FedExFuelRate   float64 `mapstructure:"fedex_fuel_rate"`
	FedExPerUnitFee float64 `mapstructure:"fedex_per_unit_fee"`
	DHLFuelRate     float64 `mapstructure:"dhl_fuel_rate"`
	DHLPerUnitFee   float64 `mapstructure:"dhl_per_unit_fee"`
	DiscountRate    float64 `mapstructure:"discount_rate"`
}

// Decimal converts a config float to decimal.Decimal.
func Decimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// StorageConfig holds the settings database location.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds the HTTP listeners.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	HealthPort     int           `mapstructure:"health_port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ResearchConfig holds the keyword-generation client settings.
type ResearchConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Temperature       float64       `mapstructure:"temperature"`
}

// KeywordsEnabled reports whether an API key is configured.
func (c *ResearchConfig) KeywordsEnabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"` // zipkin, console, otlp-grpc, otlp-http, none
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	MetricProvider string `mapstructure:"metric_provider"` // prometheus, otlp
	PrometheusPort int    `mapstructure:"prometheus_port"`
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
	v.SetEnvPrefix("PRICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "PRICER_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "PRICER_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "PRICER_LOG_LEVEL", "LOG_LEVEL")

	// Pricing
	v.BindEnv("pricing.exchange_rate", "PRICER_EXCHANGE_RATE")
	v.BindEnv("pricing.target_profit_margin", "PRICER_TARGET_PROFIT_MARGIN")
	v.BindEnv("pricing.rate_table_path", "PRICER_RATE_TABLE_PATH")
	v.BindEnv("pricing.shipping.mode", "PRICER_SHIPPING_MODE")

	// Storage / server
	v.BindEnv("storage.path", "PRICER_DB_PATH")
	v.BindEnv("server.port", "PRICER_PORT", "PORT")
	v.BindEnv("server.health_port", "PRICER_HEALTH_PORT")

	// Research
	v.BindEnv("research.base_url", "PRICER_LLM_BASE_URL", "OPENAI_BASE_URL")
	v.BindEnv("research.api_key", "PRICER_LLM_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("research.model", "PRICER_LLM_MODEL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "PRICER_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "PRICER_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "PRICER_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.trace_provider", "PRICER_TRACE_PROVIDER")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "resale-pricer")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Pricing defaults
	v.SetDefault("pricing.exchange_rate", 155)
	v.SetDefault("pricing.target_profit_margin", 20)
	v.SetDefault("pricing.marketplace_fee_rate", 18)
	v.SetDefault("pricing.ad_fee_rate", 10)
	v.SetDefault("pricing.payment_processor_fee_rate", 2)
	v.SetDefault("pricing.duty_rate", 15)
	v.SetDefault("pricing.vat_rate", 0)
	v.SetDefault("pricing.duty_processing_fee_rate", 2.1)
	v.SetDefault("pricing.safety_margin_rate", 3)
	v.SetDefault("pricing.budget_customs_handling_fee", 296)
	v.SetDefault("pricing.minimum_processing_fee", 0)
	v.SetDefault("pricing.minimum_processing_fee_foreign", 0)
	v.SetDefault("pricing.cross_border_shipping_delta", 0)
	v.SetDefault("pricing.rate_table_path", "")

	v.SetDefault("pricing.shipping.mode", "fixed")
	v.SetDefault("pricing.shipping.flat_cost", 3000)
	v.SetDefault("pricing.shipping.threshold", 5500)
	v.SetDefault("pricing.shipping.low_value_method", "EP")
	v.SetDefault("pricing.shipping.high_value_method", "CF")
	v.SetDefault("pricing.shipping.method_override", "auto")
	v.SetDefault("pricing.shipping.weight_grams", 500)
	v.SetDefault("pricing.shipping.length_cm", 20)
	v.SetDefault("pricing.shipping.width_cm", 20)
	v.SetDefault("pricing.shipping.height_cm", 20)

	v.SetDefault("pricing.surcharges.fedex_fuel_rate", 18.5)
	v.SetDefault("pricing.surcharges.fedex_per_unit_fee", 490)
	v.SetDefault("pricing.surcharges.dhl_fuel_rate", 18.5)
	v.SetDefault("pricing.surcharges.dhl_per_unit_fee", 96)
	v.SetDefault("pricing.surcharges.discount_rate", 40)

	// Storage / server defaults
	v.SetDefault("storage.path", "pricer.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.request_timeout", "15s")

	// Research defaults
	v.SetDefault("research.base_url", "https://api.openai.com/v1")
	v.SetDefault("research.model", "gpt-4o-mini")
	v.SetDefault("research.api_key", "")
	v.SetDefault("research.timeout", "20s")
	v.SetDefault("research.requests_per_minute", 30)
	v.SetDefault("research.cache_ttl", "1h")
	v.SetDefault("research.max_tokens", 100)
	v.SetDefault("research.temperature", 0.3)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "resale-pricer")
	v.SetDefault("telemetry.trace_provider", "none")
	v.SetDefault("telemetry.metric_provider", "prometheus")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration. Pricing values are validated by the
// pricing context when they are turned into a configuration snapshot.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Server.HealthPort < 0 || c.Server.HealthPort > 65535 {
		return fmt.Errorf("invalid server.health_port: %d", c.Server.HealthPort)
	}
	if c.Research.RequestsPerMinute <= 0 {
		return fmt.Errorf("research.requests_per_minute must be > 0")
	}
	switch c.Telemetry.TraceProvider {
	case "", "none", "zipkin", "console", "otlp-grpc", "otlp-http":
	default:
		return fmt.Errorf("invalid telemetry.trace_provider: %s", c.Telemetry.TraceProvider)
	}
	switch c.Telemetry.MetricProvider {
	case "", "prometheus", "otlp":
	default:
		return fmt.Errorf("invalid telemetry.metric_provider: %s", c.Telemetry.MetricProvider)
	}
	return nil
}
