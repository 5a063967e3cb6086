// Path: internal/config/config.go
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	API      APIConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Session  SessionConfig
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// APIConfig holds settings for the remote catalog API client.
type APIConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
	BurstLimit        int    `mapstructure:"burst_limit"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
}

// CatalogConfig holds the viewer defaults and filter thresholds.
type CatalogConfig struct {
	DefaultPageSize int     `mapstructure:"default_page_size"`
	PriceCap        float64 `mapstructure:"price_cap"`
	RecencyDays     int     `mapstructure:"recency_days"`
}

// DatabaseConfig holds the session database settings.
// An empty URI keeps sessions in memory.
type DatabaseConfig struct {
	URI               string `mapstructure:"uri"`
	Name              string `mapstructure:"name"`
	SessionCollection string `mapstructure:"session_collection"`
}

// SessionConfig identifies the persisted viewer session.
// An empty ID makes the daemon generate one.
type SessionConfig struct {
	ID string `mapstructure:"id"`
}

// Load loads the configuration from file and environment variables.
// args are the command line arguments without the program name.
func Load(args []string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("LOG.LEVEL", "info")
	v.SetDefault("API.BASE_URL", "https://clear-fashion-api.vercel.app")
	v.SetDefault("API.REQUESTS_PER_SECOND", 5)
	v.SetDefault("API.BURST_LIMIT", 10)
	v.SetDefault("API.TIMEOUT_SECONDS", 30)
	v.SetDefault("CATALOG.DEFAULT_PAGE_SIZE", 12)
	v.SetDefault("CATALOG.PRICE_CAP", 100)
	v.SetDefault("CATALOG.RECENCY_DAYS", 15)
	v.SetDefault("DATABASE.URI", "")
	v.SetDefault("DATABASE.NAME", "catalog-viewer")
	v.SetDefault("DATABASE.SESSION_COLLECTION", "sessions")
	v.SetDefault("SESSION.ID", "")

	flags := pflag.NewFlagSet("viewer", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a config file")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// Load from config file
	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err // Only return error if it's not a "file not found" error
		}
	}

	// Load from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SlogLevel parses the configured level, falling back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger builds the process logger.
func (c LogConfig) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.SlogLevel()}))
}
