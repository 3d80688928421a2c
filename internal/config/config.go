// Package config loads the engine's configuration (spec.md §6) via
// spf13/viper, the way 0xtitan6-polymarket-mm (same retrieval pack)
// loads its market-maker config: an optional YAML file plus
// GDAXBOOK_-prefixed environment variable overrides.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config mirrors spec.md §6's enumerated configuration fields exactly.
type Config struct {
	ProductIDs       []string `mapstructure:"product_ids"`
	APIKey           string   `mapstructure:"api_key"`
	APISecret        string   `mapstructure:"api_secret"`
	Passphrase       string   `mapstructure:"passphrase"`
	UseHeartbeat     bool     `mapstructure:"use_heartbeat"`
	TradeLogFilePath string   `mapstructure:"trade_log_file_path"`
	TimeoutSec       int      `mapstructure:"timeout_sec"`
}

// Authenticated reports whether every credential field is present. Per
// spec.md §6, if any one is absent the feed runs unauthenticated.
func (c Config) Authenticated() bool {
	return c.APIKey != "" && c.APISecret != "" && c.Passphrase != ""
}

// Timeout returns TimeoutSec as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Load reads configuration from an optional file at path (if non-empty)
// and GDAXBOOK_-prefixed environment variables, applying spec.md's
// defaults (use_heartbeat=false, timeout_sec=10) where neither supplies
// a value.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("use_heartbeat", false)
	v.SetDefault("timeout_sec", 10)

	v.SetEnvPrefix("GDAXBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows of, so keys with no
	// default must be bound explicitly for their env vars to apply.
	for _, key := range []string{"product_ids", "api_key", "api_secret", "passphrase", "trade_log_file_path"} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
