package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Yelp      YelpConfig      `yaml:"yelp" mapstructure:"yelp"`
	Enhance   EnhanceConfig   `yaml:"enhance" mapstructure:"enhance"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// PipelineConfig configures a single enrichment invocation.
type PipelineConfig struct {
	DeadlineSecs int    `yaml:"deadline_secs" mapstructure:"deadline_secs"`
	DefaultCity  string `yaml:"default_city" mapstructure:"default_city"`
	ImageCap     int    `yaml:"image_cap" mapstructure:"image_cap"`
}

// Deadline returns the per-invocation deadline.
func (p PipelineConfig) Deadline() time.Duration {
	return time.Duration(p.DeadlineSecs) * time.Second
}

// SourcesConfig holds per-adapter limits.
type SourcesConfig struct {
	Website WebsiteSourceConfig `yaml:"website" mapstructure:"website"`
	Places  PlacesSourceConfig  `yaml:"places" mapstructure:"places"`
	Reviews ReviewsSourceConfig `yaml:"reviews" mapstructure:"reviews"`
}

// WebsiteSourceConfig configures the website extractor.
type WebsiteSourceConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxImages   int `yaml:"max_images" mapstructure:"max_images"`
}

// PlacesSourceConfig configures the map listing source.
type PlacesSourceConfig struct {
	TimeoutSecs   int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxPhotos     int `yaml:"max_photos" mapstructure:"max_photos"`
	PhotoMaxWidth int `yaml:"photo_max_width" mapstructure:"photo_max_width"`
}

// ReviewsSourceConfig configures the reviews directory source.
type ReviewsSourceConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxPhotos   int `yaml:"max_photos" mapstructure:"max_photos"`
}

// FirecrawlConfig holds Firecrawl API settings. Without a key the website
// extractor fetches pages directly.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// YelpConfig holds Yelp Fusion API settings.
type YelpConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// EnhanceConfig selects and tunes the copy generator.
type EnhanceConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// StoreConfig configures the run history backend. An empty driver disables
// run history.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// Load reads configuration from ./config.yaml (if present) and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. Unlike the default
// ./config.yaml, a named file must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetConfigType("yaml")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pipeline.deadline_secs", 20)
	v.SetDefault("pipeline.default_city", "")
	v.SetDefault("pipeline.image_cap", 20)
	v.SetDefault("sources.website.timeout_secs", 8)
	v.SetDefault("sources.website.max_images", 12)
	v.SetDefault("sources.places.timeout_secs", 5)
	v.SetDefault("sources.places.max_photos", 5)
	v.SetDefault("sources.places.photo_max_width", 1200)
	v.SetDefault("sources.reviews.timeout_secs", 5)
	v.SetDefault("sources.reviews.max_photos", 3)
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("google.key", "")
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("yelp.key", "")
	v.SetDefault("yelp.base_url", "https://api.yelp.com/v3")
	v.SetDefault("enhance.provider", "anthropic")
	v.SetDefault("enhance.timeout_secs", 30)
	v.SetDefault("enhance.max_tokens", 2048)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("store.driver", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.rate_per_sec", 2.0)
	v.SetDefault("batch.max_attempts", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

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

// Validate checks the settings a command depends on. mode is one of
// "enrich", "batch", "serve" or "runs".
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Pipeline.DeadlineSecs <= 0 {
		errs = append(errs, "pipeline.deadline_secs must be > 0")
	}
	if c.Pipeline.ImageCap < 0 {
		errs = append(errs, "pipeline.image_cap must be >= 0")
	}
	switch c.Enhance.Provider {
	case "", "anthropic", "gemini", "none":
	default:
		errs = append(errs, fmt.Sprintf("enhance.provider %q must be anthropic, gemini or none", c.Enhance.Provider))
	}
	switch c.Store.Driver {
	case "":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required when store.driver is set")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}

	switch mode {
	case "enrich":
	case "batch":
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 50 {
			errs = append(errs, "batch.concurrency must be between 1 and 50")
		}
		if c.Batch.RatePerSec < 0 {
			errs = append(errs, "batch.rate_per_sec must be >= 0")
		}
		if c.Batch.MaxAttempts < 1 {
			errs = append(errs, "batch.max_attempts must be >= 1")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "runs":
		if c.Store.Driver == "" {
			errs = append(errs, "store.driver is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
