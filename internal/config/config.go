// Package config loads the service configuration from YAML files, the
// environment and built-in defaults.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BOOKSHELF_DATABASE_URI
const EnvPrefix = "BOOKSHELF"

// Storage drivers
const (
	DriverMongo  = "mongo"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// DefaultPaths are searched, in order, when LoadConfig gets no paths
var DefaultPaths = []string{
	"./config.yaml",
	"./configs/config.yaml",
	"/etc/bookshelf/config.yaml",
}

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Docs     DocsConfig     `mapstructure:"docs"`

	// Sources lists the config files that were merged, in order
	Sources []string `mapstructure:"-"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig represents cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"min=1"`
}

// DatabaseConfig selects and configures the book store
type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver" validate:"oneof=mongo badger memory"`
	URI              string        `mapstructure:"uri" validate:"required_if=Driver mongo"`
	Name             string        `mapstructure:"name" validate:"required_if=Driver mongo"`
	Collection       string        `mapstructure:"collection" validate:"required"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"gte=0"`
	BadgerPath       string        `mapstructure:"badger_path" validate:"required_if=Driver badger"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// MetricsConfig represents Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true,omitempty,startswith=/"`
}

// TracingConfig toggles OpenTelemetry export
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}

// DocsConfig represents the API documentation endpoint settings
type DocsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true,omitempty,startswith=/"`
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// setDefaults registers every key so environment overrides are picked up by Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "mydatabase")
	v.SetDefault("database.collection", "books")
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("database.operation_timeout", 5*time.Second)
	v.SetDefault("database.badger_path", "./data/books")

	v.SetDefault("log.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "bookshelf")

	v.SetDefault("docs.enabled", true)
	v.SetDefault("docs.path", "/api-docs")
}

// LoadConfig loads the configuration. Files that exist among paths (or
// DefaultPaths when none are given) are merged in order; BOOKSHELF_*
// environment variables override file values.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if len(paths) == 0 {
		paths = DefaultPaths
	}

	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Sources = loaded
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration struct tags
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
