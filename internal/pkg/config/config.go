package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	MaxUploadMB  int `mapstructure:"max_upload_mb"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

// StorageConfig locates the object store for raw GPX uploads.
type StorageConfig struct {
	Root string `mapstructure:"root"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Enabled   bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

func defaults(service string) map[string]any {
	return map[string]any{
		"server.port":            8080,
		"server.read_timeout":    10,
		"server.write_timeout":   10,
		"server.max_upload_mb":   16,
		"database.host":          "localhost",
		"database.port":          5432,
		"database.user":          "gravel",
		"database.password":      "",
		"database.dbname":        "gravelpass",
		"database.sslmode":       "disable",
		"nats.url":               "nats://localhost:4222",
		"valkey.addr":            "localhost:6379",
		"storage.root":           "./data/blobs",
		"temporal.host_port":     "localhost:7233",
		"temporal.namespace":     "default",
		"temporal.task_queue":    "gravelpass-ingest",
		"temporal.enabled":       false,
		"telemetry.service_name": service,
		"telemetry.tempo_addr":   "tempo:4317",
		"telemetry.enabled":      true,
	}
}

// Load layers defaults, an optional config.yaml, and GRAVELPASS_* env vars
// (GRAVELPASS_DATABASE_HOST overrides database.host).
func Load(service string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults(service) {
		v.SetDefault(key, val)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // file is optional

	v.SetEnvPrefix("GRAVELPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validPort(p int) bool { return p > 0 && p <= 65535 }

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if !validPort(c.Server.Port) {
		fail("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		fail("server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		fail("server.write_timeout must be positive")
	}
	if c.Server.MaxUploadMB <= 0 || c.Server.MaxUploadMB > 256 {
		fail("server.max_upload_mb must be 1-256, got %d", c.Server.MaxUploadMB)
	}
	if c.Database.Host == "" {
		fail("database.host is required")
	}
	if !validPort(c.Database.Port) {
		fail("database.port must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.User == "" {
		fail("database.user is required")
	}
	if c.Database.DBName == "" {
		fail("database.dbname is required")
	}
	if c.NATS.URL == "" {
		fail("nats.url is required")
	}
	if c.Valkey.Addr == "" {
		fail("valkey.addr is required")
	}
	if c.Storage.Root == "" {
		fail("storage.root is required")
	}
	if c.Temporal.Enabled && c.Temporal.HostPort == "" {
		fail("temporal.host_port is required when temporal is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
