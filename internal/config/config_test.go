package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func spamCleanerFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("spam_cleaner", pflag.ContinueOnError)
	fs.IntP("buffer-size", "b", 10, "")
	fs.IntP("concurrency-limit", "c", 10, "")
	fs.IntP("validation-timeout", "t", 10, "")
	fs.BoolP("dry-run", "d", false, "")
	return fs
}

func TestLoadSpamCleaner_Defaults(t *testing.T) {
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("LOG_FORMAT")

	cfg, err := LoadSpamCleaner(spamCleanerFlags())
	if err != nil {
		t.Fatalf("LoadSpamCleaner() error = %v", err)
	}
	if cfg.BufferSize != 10 || cfg.ConcurrencyLimit != 10 || cfg.ValidationTimeout.Seconds() != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogLevel != "INFO" || cfg.LogFormat != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg)
	}
	if cfg.RelayURL != defaultRelayURL {
		t.Errorf("RelayURL = %s, want %s", cfg.RelayURL, defaultRelayURL)
	}
}

func TestLoadSpamCleaner_FlagsOverrideDefaults(t *testing.T) {
	fs := spamCleanerFlags()
	fs.Set("buffer-size", "25")
	fs.Set("dry-run", "true")

	cfg, err := LoadSpamCleaner(fs)
	if err != nil {
		t.Fatalf("LoadSpamCleaner() error = %v", err)
	}
	if cfg.BufferSize != 25 || !cfg.DryRun {
		t.Errorf("flags did not override defaults: %+v", cfg)
	}
}

func TestLoadSpamCleaner_EnvOverridesLogDefaults(t *testing.T) {
	os.Setenv("LOG_LEVEL", "DEBUG")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	cfg, err := LoadSpamCleaner(spamCleanerFlags())
	if err != nil {
		t.Fatalf("LoadSpamCleaner() error = %v", err)
	}
	if cfg.LogLevel != "DEBUG" || cfg.LogFormat != "json" {
		t.Errorf("env did not override log defaults: %+v", cfg)
	}
}

func TestLoadVanishDaemon_RequiresRedisURL(t *testing.T) {
	os.Unsetenv("REDIS_URL")

	fs := pflag.NewFlagSet("vanish_subscriber", pflag.ContinueOnError)
	fs.BoolP("dry-run", "d", false, "")

	if _, err := LoadVanishDaemon(fs); err == nil {
		t.Fatal("expected validation error when REDIS_URL is unset")
	}
}

func TestLoadVanishDaemon_AcceptsRedisURLFromEnv(t *testing.T) {
	os.Setenv("REDIS_URL", "redis://localhost:6379")
	defer os.Unsetenv("REDIS_URL")

	fs := pflag.NewFlagSet("vanish_subscriber", pflag.ContinueOnError)
	fs.BoolP("dry-run", "d", false, "")

	cfg, err := LoadVanishDaemon(fs)
	if err != nil {
		t.Fatalf("LoadVanishDaemon() error = %v", err)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("RedisURL = %s", cfg.RedisURL)
	}
}
