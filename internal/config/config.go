// Package config loads litscrape settings from defaults, an optional YAML
// file, and LITSCRAPE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/henrybloomingdale/litscrape/internal/observability"
)

// EnvPrefix prefixes every environment override, e.g. LITSCRAPE_SERVER_BASE_URL.
const EnvPrefix = "LITSCRAPE"

// Config holds all front-end configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Suggest SuggestConfig `mapstructure:"suggest"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig describes the scraping server the front-end talks to.
type ServerConfig struct {
	BaseURL   string `mapstructure:"base_url" validate:"required,url"`
	UserAgent string `mapstructure:"user_agent"`
}

// GatewayConfig tunes the request gateway. A zero Timeout or RateLimit means
// unlimited.
type GatewayConfig struct {
	Timeout          time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RateLimit        float64       `mapstructure:"rate_limit" validate:"gte=0"`
	MaxResponseBytes int64         `mapstructure:"max_response_bytes" validate:"gt=0"`
}

// SuggestConfig controls the autocomplete trigger.
type SuggestConfig struct {
	TriggerKey string        `mapstructure:"trigger_key" validate:"required"`
	Delay      time.Duration `mapstructure:"delay" validate:"gte=0"`
}

// UIConfig configures the local web front-end and table paging.
type UIConfig struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"required,hostname_port"`
	PageSize   int    `mapstructure:"page_size" validate:"gte=1,lte=500"`
}

// LoggingConfig mirrors observability.LoggingConfig.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `mapstructure:"format" validate:"oneof=json console pretty"`
	Output string `mapstructure:"output" validate:"oneof=stdout stderr"`
}

// Observability converts to the logger's config type.
func (l LoggingConfig) Observability() observability.LoggingConfig {
	return observability.LoggingConfig{Level: l.Level, Format: l.Format, Output: l.Output}
}

// MetricsConfig toggles the Prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required_if=Enabled true"`
}

// Load reads configuration. When path is empty, litscrape.yaml is looked up in
// the working directory and ~/.config/litscrape; a missing file is not an
// error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("litscrape")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "litscrape"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration Load produces with no file and no
// environment overrides.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://127.0.0.1:5000")
	v.SetDefault("server.user_agent", "litscrape")

	v.SetDefault("gateway.timeout", "0s")
	v.SetDefault("gateway.rate_limit", 0)
	v.SetDefault("gateway.max_response_bytes", 50*1024*1024)

	v.SetDefault("suggest.trigger_key", " ")
	v.SetDefault("suggest.delay", "200ms")

	v.SetDefault("ui.listen_addr", "127.0.0.1:8080")
	v.SetDefault("ui.page_size", 25)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "litscrape")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports the first failing key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid %s: %q fails %q", fieldKey(fe.Namespace()), fmt.Sprint(fe.Value()), fe.Tag())
	}
	return err
}

// fieldKey turns "Config.Server.BaseURL" into "Server.BaseURL".
func fieldKey(ns string) string {
	return strings.TrimPrefix(ns, "Config.")
}
