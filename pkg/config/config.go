package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the console configuration.
type Config struct {
	APIBaseURL     string `mapstructure:"API_BASE_URL"`
	ConsoleBaseURL string `mapstructure:"CONSOLE_BASE_URL"`
	ListPath       string `mapstructure:"LIST_PATH"`
	SchemaPath     string `mapstructure:"SCHEMA_PATH"`
	DefaultPath    string `mapstructure:"DEFAULT_PATH"`
	LicensePath    string `mapstructure:"LICENSE_PATH"`

	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	RowCacheTTL int    `mapstructure:"ROW_CACHE_TTL"` // in seconds, 0 keeps rows forever

	AssetURLs        string `mapstructure:"ASSET_URLS"` // comma separated, in load order
	AssetPageURL     string `mapstructure:"ASSET_PAGE_URL"`
	AssetLoader      string `mapstructure:"ASSET_LOADER"` // "http" or "chrome"
	AssetIdleSeconds int    `mapstructure:"ASSET_IDLE_SECONDS"`

	RelayoutDelayMS int `mapstructure:"RELAYOUT_DELAY_MS"`
}

// Load reads configuration from an optional .env file, the environment and any
// bound command-line flags, in increasing order of precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env file is fine; the environment is enough in production.
	_ = v.ReadInConfig()

	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("CONSOLE_BASE_URL", "")
	v.SetDefault("LIST_PATH", "/api/list/crawler")
	v.SetDefault("SCHEMA_PATH", "/schema/crawler_item.json")
	v.SetDefault("DEFAULT_PATH", "/editor/default.json")
	v.SetDefault("LICENSE_PATH", "/LICENSE")
	v.SetDefault("SERVER_PORT", "8090")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("ROW_CACHE_TTL", 0)
	v.SetDefault("ASSET_URLS", "")
	v.SetDefault("ASSET_PAGE_URL", "")
	v.SetDefault("ASSET_LOADER", "http")
	v.SetDefault("ASSET_IDLE_SECONDS", 10)
	v.SetDefault("RELAYOUT_DELAY_MS", 200)

	if flags != nil {
		bind := map[string]string{
			"api":       "API_BASE_URL",
			"log-level": "LOG_LEVEL",
			"port":      "SERVER_PORT",
			"redis":     "REDIS_ADDR",
			"assets":    "ASSET_URLS",
		}
		for flag, key := range bind {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Assets splits AssetURLs into the ordered asset list.
func (c *Config) Assets() []string {
	var urls []string
	for _, u := range strings.Split(c.AssetURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// AssetIdleWindow is how long the sequencer waits for a further signal before
// treating a script as loaded.
func (c *Config) AssetIdleWindow() time.Duration {
	return time.Duration(c.AssetIdleSeconds) * time.Second
}

// RelayoutDelay is the delay before the table's forced re-layout.
func (c *Config) RelayoutDelay() time.Duration {
	return time.Duration(c.RelayoutDelayMS) * time.Millisecond
}

// CacheTTL is the row cache expiry.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.RowCacheTTL) * time.Second
}
