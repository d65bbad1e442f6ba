package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string

	DataPath          string
	ModelColumnPrefix string
	DataSheet         string

	StoreDriver       string
	DBPath            string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheKeyPrefix string
	CacheTTL       time.Duration

	GRPCPort              int
	GRPCReflectionEnabled bool

	HTTPPort              int
	HTTPReadHeaderTimeout time.Duration
	HTTPWriteTimeout      time.Duration
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DataPath:              getEnv("DATA_PATH", ""),
		ModelColumnPrefix:     getEnv("MODEL_COLUMN_PREFIX", "Prediction_"),
		DataSheet:             getEnv("DATA_SHEET", ""),
		StoreDriver:           getEnv("STORE_DRIVER", StoreMemory),
		DBPath:                getEnv("DB_PATH", ":memory:"),
		DBMaxOpenConns:        getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:        getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime:     getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		DBConnMaxIdleTime:     getEnvDuration("DB_CONN_MAX_IDLE_TIME", 2*time.Minute),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		CacheKeyPrefix:        getEnv("CACHE_KEY_PREFIX", "dashboard:"),
		CacheTTL:              getEnvDuration("CACHE_TTL", 10*time.Minute),
		GRPCPort:              getEnvInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		HTTPPort:              getEnvInt("HTTP_PORT", 8080),
		HTTPReadHeaderTimeout: getEnvDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		HTTPWriteTimeout:      getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.DataPath == "" {
		errs = append(errs, errors.New("DATA_PATH is required"))
	}
	if c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StoreSQLite, c.StoreDriver))
	}
	if c.StoreDriver == StoreSQLite && c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required when STORE_DRIVER is sqlite"))
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_PORT %d out of range", c.GRPCPort))
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if c.GRPCPort == c.HTTPPort {
		errs = append(errs, fmt.Errorf("GRPC_PORT and HTTP_PORT must differ, both are %d", c.GRPCPort))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL))
	}
	if c.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("REDIS_DB must not be negative, got %d", c.RedisDB))
	}
	if c.DBMaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1, got %d", c.DBMaxOpenConns))
	}
	if c.DBMaxIdleConns < 0 || c.DBConnMaxLifetime < 0 || c.DBConnMaxIdleTime < 0 {
		errs = append(errs, errors.New("DB pool limits must not be negative"))
	}
	if c.HTTPReadHeaderTimeout <= 0 || c.HTTPWriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP timeouts must be positive, got read header %s and write %s",
			c.HTTPReadHeaderTimeout, c.HTTPWriteTimeout))
	}

	return errors.Join(errs...)
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
