package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// DefaultCORSOrigins are allowed when CORS_ORIGINS is unset, for local development.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:8000",
	"http://127.0.0.1:8000",
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver          string
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Config holds all application settings. It is built once at startup and passed down.
type Config struct {
	AppPort        string
	Environment    string
	LogLevel       string
	Database       DatabaseConfig
	TestAPIKey     string
	CORSOrigins    []string
	RabbitMQURL    string
	RequestTimeout time.Duration
	SeedOnStartup  bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("TEST_API_KEY", "")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("SEED_ON_STARTUP", true)
}

// Load reads the configuration from v, which should already have AutomaticEnv enabled.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		Environment: v.GetString("APP_ENV"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			URL:             v.GetString("DATABASE_URL"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		TestAPIKey:     v.GetString("TEST_API_KEY"),
		CORSOrigins:    splitOrigins(v.GetString("CORS_ORIGINS")),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		SeedOnStartup:  v.GetBool("SEED_ON_STARTUP"),
	}

	if !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = append([]string(nil), DefaultCORSOrigins...)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", v.GetString("REQUEST_TIMEOUT"))
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if cfg.Database.URL == "" {
			return nil, errors.New("DATABASE_URL is not set")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
