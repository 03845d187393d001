// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every automatically bound environment variable.
const EnvPrefix = "PORTFOLIO"

// Config represents the complete application configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
	Rules  RulesConfig  `mapstructure:"rules" yaml:"rules"`
	Status StatusConfig `mapstructure:"status" yaml:"status"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
}

// LogConfig selects level, format and an optional extra log file.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// RedisConfig locates the job stream and names this worker's consumer.
type RedisConfig struct {
	URL           string `mapstructure:"url" yaml:"url"`
	StreamKey     string `mapstructure:"stream_key" yaml:"stream_key"`
	ConsumerGroup string `mapstructure:"consumer_group" yaml:"consumer_group"`
	ConsumerName  string `mapstructure:"consumer_name" yaml:"consumer_name"`
	BlockMS       int    `mapstructure:"block_ms" yaml:"block_ms"`
	MessageCount  int    `mapstructure:"message_count" yaml:"message_count"`
}

// Block returns BlockMS as a duration.
func (r RedisConfig) Block() time.Duration {
	return time.Duration(r.BlockMS) * time.Millisecond
}

// RulesConfig points at an optional categorization rules override.
type RulesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// StatusConfig enables the job status server when Addr is set. MaxJobs
// bounds how many finished jobs the status store remembers.
type StatusConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	MaxJobs int    `mapstructure:"max_jobs" yaml:"max_jobs"`
}

// ExportConfig controls CSV export.
type ExportConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// explicit environment names kept for compatibility with existing deployments
var envBindings = map[string]string{
	"redis.url":            "REDIS_URL",
	"redis.stream_key":     "REDIS_STREAM_KEY",
	"redis.consumer_group": "CONSUMER_GROUP",
	"redis.consumer_name":  "CONSUMER_NAME",
	"redis.block_ms":       "BLOCK_TIME",
	"redis.message_count":  "MESSAGE_COUNT",
	"log.level":            "LOG_LEVEL",
	"log.format":           "LOG_FORMAT",
	"log.file":             "LOG_FILE",
	"rules.file":           "RULES_FILE",
	"status.addr":          "STATUS_ADDR",
	"status.max_jobs":      "STATUS_MAX_JOBS",
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
// configFile, when set, replaces the search for config.yaml and must exist.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.portfolio-parser")
		v.AddConfigPath(".portfolio-parser")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, name := range envBindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", name, err)
		}
	}

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	// Redis defaults
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("redis.stream_key", "portfolio:jobs")
	v.SetDefault("redis.consumer_group", "portfolio-workers")
	v.SetDefault("redis.consumer_name", "go-worker-1")
	v.SetDefault("redis.block_ms", 1000)
	v.SetDefault("redis.message_count", 10)

	v.SetDefault("rules.file", "")
	v.SetDefault("status.addr", "")
	v.SetDefault("status.max_jobs", 1000)
	v.SetDefault("export.delimiter", ",")
}

// Validate checks the configuration values. Callers that change a loaded
// Config, such as command-line overrides, validate it again.
func Validate(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if !strings.HasPrefix(config.Redis.URL, "redis://") && !strings.HasPrefix(config.Redis.URL, "rediss://") {
		return fmt.Errorf("redis.url must start with redis:// or rediss://, got: %s", config.Redis.URL)
	}
	if config.Redis.StreamKey == "" {
		return fmt.Errorf("redis.stream_key must not be empty")
	}
	if config.Redis.ConsumerGroup == "" || config.Redis.ConsumerName == "" {
		return fmt.Errorf("redis.consumer_group and redis.consumer_name must not be empty")
	}
	if config.Redis.BlockMS < 0 {
		return fmt.Errorf("redis.block_ms must be >= 0, got: %d", config.Redis.BlockMS)
	}
	if config.Redis.MessageCount < 1 {
		return fmt.Errorf("redis.message_count must be >= 1, got: %d", config.Redis.MessageCount)
	}

	if config.Status.MaxJobs < 0 {
		return fmt.Errorf("status.max_jobs must be >= 0, got: %d", config.Status.MaxJobs)
	}

	if len([]rune(config.Export.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.Export.Delimiter)
	}

	return nil
}
