package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the service configuration.
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Dehair  DehairConfig
	Cache   CacheConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type DataConfig struct {
	FilteredDir string
	ScoreField  string
}

type DehairConfig struct {
	MaxIterations int
}

type CacheConfig struct {
	Size int
}

type LoggingConfig struct {
	Level string
}

// EnvPrefix prefixes every environment override, e.g. INFLUENCE_SERVER_ADDRESS.
const EnvPrefix = "INFLUENCE"

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.address", ":5090")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("data.filtered_dir", "../filtered_data")
	v.SetDefault("data.score_field", "TracInScore")

	v.SetDefault("dehair.max_iterations", 100)

	v.SetDefault("cache.size", 64)

	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load builds the configuration from defaults, the optional file at path
// and environment overrides, in increasing precedence.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			AllowedOrigins:  v.GetStringSlice("server.allowed_origins"),
		},
		Data: DataConfig{
			FilteredDir: v.GetString("data.filtered_dir"),
			ScoreField:  v.GetString("data.score_field"),
		},
		Dehair: DehairConfig{
			MaxIterations: v.GetInt("dehair.max_iterations"),
		},
		Cache: CacheConfig{
			Size: v.GetInt("cache.size"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("logging.level"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	if c.Dehair.MaxIterations <= 0 {
		return fmt.Errorf("dehair.max_iterations must be positive, got %d", c.Dehair.MaxIterations)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive, got %d", c.Cache.Size)
	}
	if c.Data.FilteredDir == "" {
		return fmt.Errorf("data.filtered_dir cannot be empty")
	}
	return nil
}

// LogLevel parses the configured level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil || c.Logging.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}
