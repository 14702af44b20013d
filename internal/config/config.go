// Package config layers Viper under each binary's pflag set so the
// REDIS_URL/LOG_LEVEL/LOG_FORMAT environment variables are read with the
// same flag > environment > default precedence the teacher's DITTOFS_*
// overrides use, then validates the merged result with struct tags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// defaultRelayURL is the local relay the reference validator queries (§6).
// It is not exposed as a flag or environment variable.
const defaultRelayURL = "ws://localhost:7777"

// SpamCleanerConfig configures the spam_cleaner binary (§6).
type SpamCleanerConfig struct {
	BufferSize        int           `validate:"min=1"`
	ConcurrencyLimit  int           `validate:"min=1"`
	ValidationTimeout time.Duration `validate:"min=1s"`
	DryRun            bool
	RelayURL          string `validate:"required,url"`
	LogLevel          string `validate:"oneof=DEBUG INFO WARN ERROR"`
	LogFormat         string `validate:"oneof=text json"`
}

// VanishDaemonConfig configures vanish_subscriber and vanish_listener: both
// binaries share the same flag surface (§6).
type VanishDaemonConfig struct {
	DryRun    bool
	RedisURL  string `validate:"required"`
	LogLevel  string `validate:"oneof=DEBUG INFO WARN ERROR"`
	LogFormat string `validate:"oneof=text json"`
}

var validate = validator.New()

// LoadSpamCleaner merges the -b/-c/-t/-d flags over defaults, and LOG_LEVEL
// / LOG_FORMAT over their own defaults, then validates the result.
func LoadSpamCleaner(flags *pflag.FlagSet) (*SpamCleanerConfig, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := &SpamCleanerConfig{
		BufferSize:        v.GetInt("buffer-size"),
		ConcurrencyLimit:  v.GetInt("concurrency-limit"),
		ValidationTimeout: time.Duration(v.GetInt("validation-timeout")) * time.Second,
		DryRun:            v.GetBool("dry-run"),
		RelayURL:          defaultRelayURL,
		LogLevel:          envOrDefault("LOG_LEVEL", "INFO"),
		LogFormat:         envOrDefault("LOG_FORMAT", "text"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadVanishDaemon merges the -d flag over its default, REDIS_URL (required)
// and LOG_LEVEL/LOG_FORMAT over their own defaults, then validates.
func LoadVanishDaemon(flags *pflag.FlagSet) (*VanishDaemonConfig, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := &VanishDaemonConfig{
		DryRun:    v.GetBool("dry-run"),
		RedisURL:  os.Getenv("REDIS_URL"),
		LogLevel:  envOrDefault("LOG_LEVEL", "INFO"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

