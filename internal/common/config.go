// Package common provides shared utilities for the solar cycle tools.
package common

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds common configuration for all tools.
type Config struct {
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	DataDir            string
	FreshnessDays      int
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     getEnvInt("CLICKHOUSE_PORT", 9000),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solar"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		DataDir:            getEnv("SOLAR_DATA_DIR", "/var/lib/solar-cycle-tools"),
		FreshnessDays:      getEnvInt("SOLAR_FRESHNESS_DAYS", 7),
	}
}

// RawDataDir returns the raw index cache directory path.
func (c *Config) RawDataDir() string {
	return filepath.Join(c.DataDir, "raw")
}

// ExtremaDir returns the directory for formatted extrema tables.
func (c *Config) ExtremaDir() string {
	return filepath.Join(c.DataDir, "extrema")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
