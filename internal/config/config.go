// Package config defines the application configuration and loads it with viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or text
}

// NewsAPIConfig holds upstream settings.
type NewsAPIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	Breaker   bool          `mapstructure:"breaker"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// EnrichConfig toggles optional article post-processing.
type EnrichConfig struct {
	CleanDescriptions bool `mapstructure:"clean_descriptions"`
	Images            bool `mapstructure:"images"`
	MaxImageLookups   int  `mapstructure:"max_image_lookups"`
}

// Config is the top-level configuration structure.
type Config struct {
	Port           int           `mapstructure:"port"`
	NewsAPIKey     string        `mapstructure:"newsapi_key"`
	DefaultCountry string        `mapstructure:"default_country"`
	GinMode        string        `mapstructure:"gin_mode"`
	Log            LogConfig     `mapstructure:"log"`
	NewsAPI        NewsAPIConfig `mapstructure:"newsapi"`
	Cache          CacheConfig   `mapstructure:"cache"`
	Enrich         EnrichConfig  `mapstructure:"enrich"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"port":                      "PORT",
	"newsapi_key":               "NEWSAPI_KEY",
	"default_country":           "DEFAULT_COUNTRY",
	"gin_mode":                  "GIN_MODE",
	"log.level":                 "LOG_LEVEL",
	"log.format":                "LOG_FORMAT",
	"newsapi.base_url":          "NEWSAPI_BASE_URL",
	"newsapi.timeout":           "NEWSAPI_TIMEOUT",
	"newsapi.rate_limit":        "NEWSAPI_RATE_LIMIT",
	"newsapi.breaker":           "NEWSAPI_BREAKER",
	"cache.ttl":                 "CACHE_TTL",
	"cache.sweep_interval":      "CACHE_SWEEP_INTERVAL",
	"enrich.clean_descriptions": "ENRICH_CLEAN_DESCRIPTIONS",
	"enrich.images":             "ENRICH_IMAGES",
	"enrich.max_image_lookups":  "ENRICH_MAX_IMAGE_LOOKUPS",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 5000)
	v.SetDefault("default_country", "in")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("newsapi.base_url", "https://newsapi.org")
	v.SetDefault("newsapi.timeout", "10s")
	v.SetDefault("newsapi.rate_limit", 0)
	v.SetDefault("newsapi.breaker", true)
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("cache.sweep_interval", "5m")
	v.SetDefault("enrich.clean_descriptions", false)
	v.SetDefault("enrich.images", false)
	v.SetDefault("enrich.max_image_lookups", 3)
}

// BindEnv binds every key to its environment variable.
func BindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}

// Load unmarshals v into a Config with defaults and environment applied.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads configuration from the environment only.
func FromEnv() (Config, error) {
	return Load(viper.New())
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.Port == 0 {
		c.Port = 5000
	}
	c.DefaultCountry = strings.ToLower(strings.TrimSpace(c.DefaultCountry))
	if c.DefaultCountry == "" {
		c.DefaultCountry = "in"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.NewsAPI.BaseURL == "" {
		c.NewsAPI.BaseURL = "https://newsapi.org"
	}
	if c.NewsAPI.Timeout <= 0 {
		c.NewsAPI.Timeout = 10 * time.Second
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 60 * time.Second
	}
	if c.Enrich.MaxImageLookups <= 0 {
		c.Enrich.MaxImageLookups = 3
	}
}

// Validate rejects settings the server cannot run with. A missing API key is
// not an error; callers warn about it instead.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.NewsAPI.RateLimit < 0 {
		return fmt.Errorf("newsapi.rate_limit must not be negative")
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("cache.sweep_interval must not be negative")
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
