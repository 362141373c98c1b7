package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Ebay    EbayConfig    `mapstructure:",squash"`
	Pricing PricingConfig `mapstructure:",squash"`
	Server  ServerConfig  `mapstructure:",squash"`
	Log     LogConfig     `mapstructure:",squash"`
}

type EbayConfig struct {
	ClientID      string  `mapstructure:"ebay_client_id"`
	ClientSecret  string  `mapstructure:"ebay_client_secret"`
	Sandbox       bool    `mapstructure:"ebay_sandbox"`
	MarketplaceID string  `mapstructure:"ebay_marketplace_id"`
	ReuseToken    bool    `mapstructure:"ebay_reuse_token"`
	RateLimit     float64 `mapstructure:"ebay_rate_limit"`
}

type PricingConfig struct {
	CacheSize     int  `mapstructure:"pricing_cache_size"`
	NegativeCache bool `mapstructure:"pricing_negative_cache"`
	SalesLimit    int  `mapstructure:"pricing_sales_limit"`
}

type ServerConfig struct {
	ListenAddr         string `mapstructure:"listen_addr"`
	CacheStatsSchedule string `mapstructure:"cache_stats_schedule"`
}

type LogConfig struct {
	Level string `mapstructure:"log_level"`
}

// Load reads configuration from the environment, with an optional
// config.yaml in ./config or the working directory. Missing eBay
// credentials are not an error here; they surface on first use.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetDefault("ebay_client_id", "")
	v.SetDefault("ebay_client_secret", "")
	v.SetDefault("ebay_sandbox", false)
	v.SetDefault("ebay_marketplace_id", "EBAY_US")
	v.SetDefault("ebay_reuse_token", true)
	v.SetDefault("ebay_rate_limit", 5.0)
	v.SetDefault("pricing_cache_size", 256)
	v.SetDefault("pricing_negative_cache", false)
	v.SetDefault("pricing_sales_limit", 25)
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("cache_stats_schedule", "@every 5m")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Pricing.CacheSize <= 0 {
		return fmt.Errorf("PRICING_CACHE_SIZE must be positive, got %d", c.Pricing.CacheSize)
	}
	if c.Pricing.SalesLimit <= 0 {
		return fmt.Errorf("PRICING_SALES_LIMIT must be positive, got %d", c.Pricing.SalesLimit)
	}
	if c.Ebay.RateLimit < 0 {
		return fmt.Errorf("EBAY_RATE_LIMIT must not be negative, got %g", c.Ebay.RateLimit)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// HasCredentials reports whether both eBay credentials are set
func (c *Config) HasCredentials() bool {
	return c.Ebay.ClientID != "" && c.Ebay.ClientSecret != ""
}

// LogLevel returns the parsed log level, defaulting to info
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
