package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"medicine-inventory-service/internal/query"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Store      StoreConfig
	Postgres   PostgresConfig
	Query      QueryConfig
	Metrics    MetricsConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Enabled bool   `envconfig:"GRPC_ENABLED" default:"true"`
	Port    string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver         string `envconfig:"STORE_DRIVER" default:"memory"` // memory or postgres
	SeedCategories bool   `envconfig:"STORE_SEED_CATEGORIES" default:"true"`
}

// PostgresConfig holds PostgreSQL connection details. Only read when STORE_DRIVER=postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// QueryConfig bounds list pagination at the HTTP and gRPC boundary.
type QueryConfig struct {
	DefaultLimit int `envconfig:"QUERY_DEFAULT_LIMIT" default:"100"`
	MaxLimit     int `envconfig:"QUERY_MAX_LIMIT" default:"1000"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		var missing []string
		if c.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if c.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DBNAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("invalid configuration: STORE_DRIVER=postgres requires %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("invalid configuration: unknown STORE_DRIVER %q (want %s or %s)",
			c.Store.Driver, StoreDriverMemory, StoreDriverPostgres)
	}

	if c.Query.MaxLimit < 1 || c.Query.MaxLimit > query.MaxLimit {
		return fmt.Errorf("invalid configuration: QUERY_MAX_LIMIT must be between 1 and %d", query.MaxLimit)
	}
	if c.Query.DefaultLimit < 1 || c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("invalid configuration: QUERY_DEFAULT_LIMIT must be between 1 and QUERY_MAX_LIMIT")
	}
	return nil
}
