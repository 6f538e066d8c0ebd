package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HttpServer.Port)
	assert.Equal(t, 15*time.Second, cfg.HttpServer.TimeoutRead)
	assert.True(t, cfg.GrpcServer.Enabled)
	assert.Equal(t, "9090", cfg.GrpcServer.Port)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.True(t, cfg.Store.SeedCategories)
	assert.Equal(t, 100, cfg.Query.DefaultLimit)
	assert.Equal(t, 1000, cfg.Query.MaxLimit)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "inventory")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DBNAME", "inventory")
	t.Setenv("QUERY_DEFAULT_LIMIT", "25")
	t.Setenv("GRPC_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 25, cfg.Query.DefaultLimit)
	assert.False(t, cfg.GrpcServer.Enabled)
	assert.Equal(t, "host=db port=5432 user=inventory password=secret dbname=inventory sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_PostgresRequiresConnectionSettings(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "db")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
	assert.Contains(t, err.Error(), "POSTGRES_DBNAME")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store: StoreConfig{Driver: StoreDriverMemory},
			Query: QueryConfig{DefaultLimit: 100, MaxLimit: 1000},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, "unknown STORE_DRIVER"},
		{"max limit too large", func(c *Config) { c.Query.MaxLimit = 5000 }, "QUERY_MAX_LIMIT"},
		{"max limit zero", func(c *Config) { c.Query.MaxLimit = 0 }, "QUERY_MAX_LIMIT"},
		{"default above max", func(c *Config) { c.Query.DefaultLimit = 2000 }, "QUERY_DEFAULT_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
