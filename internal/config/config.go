// Package config loads application configuration and wires the global logger.
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
	Hunter    HunterConfig    `yaml:"hunter" mapstructure:"hunter"`
	Apollo    ApolloConfig    `yaml:"apollo" mapstructure:"apollo"`
	Apify     ApifyConfig     `yaml:"apify" mapstructure:"apify"`
	Waterfall WaterfallConfig `yaml:"waterfall" mapstructure:"waterfall"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// HunterConfig holds Hunter API settings (finder + verifier).
type HunterConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ApolloConfig holds Apollo API settings (people match).
type ApolloConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ApifyConfig holds the scraping actor settings.
type ApifyConfig struct {
	Token       string `yaml:"token" mapstructure:"token"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	ActorID     string `yaml:"actor_id" mapstructure:"actor_id"`
	MaxWaitSecs int    `yaml:"max_wait_secs" mapstructure:"max_wait_secs"`
	MemoryMB    int    `yaml:"memory_mb" mapstructure:"memory_mb"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// WaterfallConfig points at the stage policy file.
type WaterfallConfig struct {
	PolicyPath string `yaml:"policy_path" mapstructure:"policy_path"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	PacingMs    int `yaml:"pacing_ms" mapstructure:"pacing_ms"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.concurrency", 3)
	v.SetDefault("batch.pacing_ms", 250)
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("apollo.base_url", "https://api.apollo.io/v1")
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.max_wait_secs", 300)
	v.SetDefault("apify.memory_mb", 2048)
	v.SetDefault("apify.timeout_secs", 300)

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

// Validate checks that the configuration required for the given mode is
// present. Modes: "resolve" (waterfall providers), "contacts" (scraping
// actor), "serve" (HTTP server).
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 20 {
		problems = append(problems, "batch.concurrency must be between 1 and 20")
	}

	switch mode {
	case "resolve":
		if c.Hunter.Key == "" && c.Apollo.Key == "" {
			problems = append(problems, "at least one of hunter.key or apollo.key is required")
		}
	case "contacts":
		if c.Apify.Token == "" {
			problems = append(problems, "apify.token is required")
		}
		if c.Apify.ActorID == "" {
			problems = append(problems, "apify.actor_id is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
