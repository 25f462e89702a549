// Package config loads critpath settings from an optional TOML file and
// CRITPATH_* environment variables.
//
// Precedence, highest first: environment, config file, defaults. Keys are
// dotted paths; the environment form upper-cases them and replaces dots
// with underscores, so server.addr becomes CRITPATH_SERVER_ADDR.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "CRITPATH"

// Config holds all application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
	Render RenderConfig `mapstructure:"render"`
	Cache  CacheConfig  `mapstructure:"cache"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

type RenderConfig struct {
	Format   string `mapstructure:"format"`
	Detailed bool   `mapstructure:"detailed"`
}

type CacheConfig struct {
	Disabled bool   `mapstructure:"disabled"`
	Dir      string `mapstructure:"dir"`
	// RedisURL selects the Redis backend instead of the file cache.
	RedisURL string `mapstructure:"redis_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			SessionTTL:      2 * time.Hour,
			CleanupInterval: 5 * time.Minute,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
		},
		Render: RenderConfig{Format: "svg"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.cleanup_interval", d.Server.CleanupInterval)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("render.format", d.Render.Format)
	v.SetDefault("render.detailed", d.Render.Detailed)
	v.SetDefault("cache.disabled", d.Cache.Disabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
}

// DefaultPath returns ~/.config/critpath/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "critpath", "config.toml"), nil
}

// Load reads configuration from path and the environment. An empty path
// means the default location, which may be absent; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"dot": true, "svg": true, "png": true, "json": true}
)

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if !validLevels[strings.ToLower(c.Log.Level)] {
		warnings = append(warnings, fmt.Sprintf("log level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Server.Addr == "" {
		warnings = append(warnings, "server addr is empty; the HTTP API will listen on :80")
	}
	if c.Server.SessionTTL <= 0 {
		warnings = append(warnings, "server session_ttl is not positive; sessions will never expire")
	}
	if c.Server.CleanupInterval <= 0 {
		warnings = append(warnings, "server cleanup_interval is not positive; expired sessions are only dropped on access")
	}
	if c.Cache.RedisURL != "" && c.Cache.Dir != "" {
		warnings = append(warnings, "cache dir is ignored when cache redis_url is set")
	}
	if !validFormats[c.Render.Format] {
		warnings = append(warnings, fmt.Sprintf("render format %q is not one of dot, svg, png, json", c.Render.Format))
	}

	return warnings
}
