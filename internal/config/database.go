package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"library-backend/internal/infrastructure/database"
)

// LoadDatabaseConfig reads the entity-tracking connection config from
// environment variables (DB_* keys).
func LoadDatabaseConfig() (*database.DBConfig, error) {
	return loadDBConfig("DB")
}

// LoadProcDatabaseConfig reads the stored-procedure connection config
// (SP_DB_* keys). Keys not set fall back to the DB_* values, so a single
// database can back both logical connections.
func LoadProcDatabaseConfig() (*database.DBConfig, error) {
	return loadDBConfig("SP_DB")
}

func loadDBConfig(prefix string) (*database.DBConfig, error) {
	env := func(key, fallback string) string {
		if v := os.Getenv(prefix + "_" + key); v != "" {
			return v
		}
		if prefix != "DB" {
			if v := os.Getenv("DB_" + key); v != "" {
				return v
			}
		}
		return fallback
	}

	port, err := strconv.Atoi(env("PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_PORT: %w", prefix, err)
	}

	maxConns, err := strconv.Atoi(env("MAX_CONNECTIONS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_MAX_CONNECTIONS: %w", prefix, err)
	}

	minConns, err := strconv.Atoi(env("MIN_CONNECTIONS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_MIN_CONNECTIONS: %w", prefix, err)
	}

	maxRetries, err := strconv.Atoi(env("MAX_RETRIES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_MAX_RETRIES: %w", prefix, err)
	}

	maxConnLifetime, err := time.ParseDuration(env("MAX_CONN_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_MAX_CONN_LIFETIME: %w", prefix, err)
	}

	maxConnIdleTime, err := time.ParseDuration(env("MAX_CONN_IDLE_TIME", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_MAX_CONN_IDLE_TIME: %w", prefix, err)
	}

	healthCheckPeriod, err := time.ParseDuration(env("HEALTH_CHECK_PERIOD", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_HEALTH_CHECK_PERIOD: %w", prefix, err)
	}

	retryDelay, err := time.ParseDuration(env("RETRY_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_RETRY_DELAY: %w", prefix, err)
	}

	connectTimeout, err := time.ParseDuration(env("CONNECT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_CONNECT_TIMEOUT: %w", prefix, err)
	}

	return &database.DBConfig{
		Host:              env("HOST", "localhost"),
		Port:              port,
		Username:          env("USER", "library"),
		Password:          env("PASSWORD", "secret"),
		DBName:            env("NAME", "library_dev"),
		MaxConns:          int32(maxConns),
		MinConns:          int32(minConns),
		MaxConnLifetime:   maxConnLifetime,
		MaxConnIdleTime:   maxConnIdleTime,
		HealthCheckPeriod: healthCheckPeriod,
		MaxRetries:        maxRetries,
		RetryDelay:        retryDelay,
		ConnectTimeout:    connectTimeout,
	}, nil
}
