package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Collect   CollectConfig   `yaml:"collect" mapstructure:"collect"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DiscoveryConfig configures the strategy orchestrator.
type DiscoveryConfig struct {
	MaxResultsCap  int `yaml:"max_results_cap" mapstructure:"max_results_cap"`
	ErrorListLimit int `yaml:"error_list_limit" mapstructure:"error_list_limit"`
	FallbackLimit  int `yaml:"fallback_limit" mapstructure:"fallback_limit"`
	// Randomized inter-request pacing bounds. Zero disables pacing.
	DelayMinMs int `yaml:"delay_min_ms" mapstructure:"delay_min_ms"`
	DelayMaxMs int `yaml:"delay_max_ms" mapstructure:"delay_max_ms"`
}

// BrowserConfig configures headless browser sessions.
type BrowserConfig struct {
	Headless            bool `yaml:"headless" mapstructure:"headless"`
	PageLoadTimeoutSecs int  `yaml:"page_load_timeout_secs" mapstructure:"page_load_timeout_secs"`
	ElementTimeoutSecs  int  `yaml:"element_timeout_secs" mapstructure:"element_timeout_secs"`
}

// GeocodeConfig configures the location resolver chain.
type GeocodeConfig struct {
	NominatimURL     string  `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	CountryCodes     string  `yaml:"country_codes" mapstructure:"country_codes"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	BreakerFailures  int     `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerResetSecs int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// CollectConfig configures the listing collector.
type CollectConfig struct {
	// MaxScrollAttempts bounds consecutive scrolls that yield no new
	// candidates before the collector gives up. Product-tuned default,
	// kept as configuration rather than a hard invariant.
	MaxScrollAttempts int `yaml:"max_scroll_attempts" mapstructure:"max_scroll_attempts"`
	MinNameLength     int `yaml:"min_name_length" mapstructure:"min_name_length"`
}

// ExtractConfig configures the detail extractor. The confidence weights are
// product-tuned values carried over as defaults; they can be recalibrated
// without touching code.
type ExtractConfig struct {
	NavMaxAttempts     int     `yaml:"nav_max_attempts" mapstructure:"nav_max_attempts"`
	NavBackoffMs       int     `yaml:"nav_backoff_ms" mapstructure:"nav_backoff_ms"`
	BaseConfidence     float64 `yaml:"base_confidence" mapstructure:"base_confidence"`
	WebsiteWeight      float64 `yaml:"website_weight" mapstructure:"website_weight"`
	AddressWeight      float64 `yaml:"address_weight" mapstructure:"address_weight"`
	PhoneWeight        float64 `yaml:"phone_weight" mapstructure:"phone_weight"`
	EmailWeight        float64 `yaml:"email_weight" mapstructure:"email_weight"`
	DegradedConfidence float64 `yaml:"degraded_confidence" mapstructure:"degraded_confidence"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

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

// SetDefaults registers every tunable's default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("discovery.max_results_cap", 200)
	v.SetDefault("discovery.error_list_limit", 10)
	v.SetDefault("discovery.fallback_limit", 5)
	v.SetDefault("discovery.delay_min_ms", 1500)
	v.SetDefault("discovery.delay_max_ms", 3500)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.page_load_timeout_secs", 60)
	v.SetDefault("browser.element_timeout_secs", 15)

	v.SetDefault("geocode.nominatim_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geocode.country_codes", "us,ca,gb,au")
	v.SetDefault("geocode.user_agent", "LeadScout/1.0 (Business Directory)")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.rate_per_sec", 1)
	v.SetDefault("geocode.breaker_failures", 5)
	v.SetDefault("geocode.breaker_reset_secs", 30)

	v.SetDefault("collect.max_scroll_attempts", 30)
	v.SetDefault("collect.min_name_length", 2)

	v.SetDefault("extract.nav_max_attempts", 3)
	v.SetDefault("extract.nav_backoff_ms", 500)
	v.SetDefault("extract.base_confidence", 0.6)
	v.SetDefault("extract.website_weight", 0.2)
	v.SetDefault("extract.address_weight", 0.1)
	v.SetDefault("extract.phone_weight", 0.05)
	v.SetDefault("extract.email_weight", 0.05)
	v.SetDefault("extract.degraded_confidence", 0.5)
}

// Default returns a Config populated with the registered defaults only.
// Useful for tests and library embedding where no file/env should apply.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(&cfg)
	return &cfg
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
