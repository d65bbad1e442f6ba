package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "DATA_PATH", "MODEL_COLUMN_PREFIX", "DATA_SHEET", "STORE_DRIVER",
		"DB_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_KEY_PREFIX", "CACHE_TTL",
		"GRPC_PORT", "GRPC_REFLECTION_ENABLED", "HTTP_PORT", "HTTP_READ_HEADER_TIMEOUT", "HTTP_WRITE_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := LoadFromEnv()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "Prediction_", cfg.ModelColumnPrefix)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.False(t, cfg.GRPCReflectionEnabled)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, "dashboard:", cfg.CacheKeyPrefix)
	assert.Zero(t, cfg.RedisDB)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)
	assert.Equal(t, 5*time.Second, cfg.HTTPReadHeaderTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTPWriteTimeout)

	cfg.DataPath = "market.csv"
	assert.NoError(t, cfg.Validate(), "defaults are valid once DATA_PATH is set")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATA_PATH", "/data/market.csv")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("GRPC_PORT", "6000")
	t.Setenv("GRPC_REFLECTION_ENABLED", "true")
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("REDIS_PASSWORD", "s3cret")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_KEY_PREFIX", "east:")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1m")
	t.Setenv("HTTP_WRITE_TIMEOUT", "1m")

	cfg := LoadFromEnv()

	assert.Equal(t, "/data/market.csv", cfg.DataPath)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 6000, cfg.GRPCPort)
	assert.True(t, cfg.GRPCReflectionEnabled)
	assert.Equal(t, 8080, cfg.HTTPPort, "unparsable values fall back")
	assert.Equal(t, "s3cret", cfg.RedisPassword)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "east:", cfg.CacheKeyPrefix)
	assert.Equal(t, time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, time.Minute, cfg.HTTPWriteTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DataPath:    "market.csv",
			StoreDriver: StoreMemory,
			DBPath:      ":memory:",
			CacheTTL:    time.Minute,
			GRPCPort:    50051,
			HTTPPort:    8080,

			DBMaxOpenConns:        25,
			HTTPReadHeaderTimeout: time.Second,
			HTTPWriteTimeout:      time.Second,
		}
	}

	require.NoError(t, valid().Validate())

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		message string
	}{
		{"missing data path", func(c *Config) { c.DataPath = "" }, "DATA_PATH is required"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "postgres" }, "STORE_DRIVER"},
		{"sqlite without path", func(c *Config) { c.StoreDriver = StoreSQLite; c.DBPath = "" }, "DB_PATH is required"},
		{"grpc port", func(c *Config) { c.GRPCPort = 0 }, "GRPC_PORT 0 out of range"},
		{"http port", func(c *Config) { c.HTTPPort = 70000 }, "HTTP_PORT 70000 out of range"},
		{"same ports", func(c *Config) { c.HTTPPort = c.GRPCPort }, "must differ"},
		{"cache ttl", func(c *Config) { c.CacheTTL = 0 }, "CACHE_TTL must be positive"},
		{"redis db", func(c *Config) { c.RedisDB = -1 }, "REDIS_DB must not be negative"},
		{"open conns", func(c *Config) { c.DBMaxOpenConns = 0 }, "DB_MAX_OPEN_CONNS must be at least 1"},
		{"idle conns", func(c *Config) { c.DBMaxIdleConns = -1 }, "DB pool limits must not be negative"},
		{"http timeouts", func(c *Config) { c.HTTPWriteTimeout = 0 }, "HTTP timeouts must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			assert.ErrorContains(t, cfg.Validate(), tc.message)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&Config{AppEnv: "production"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	logger, err = NewLogger(&Config{AppEnv: "development"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
