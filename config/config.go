package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the analysis service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Analysis AnalysisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration for report
// persistence
type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// Connection pool settings
	MaxConns int
	MinConns int

	// Persistence is optional: with PersistReports false the service runs
	// purely in memory and never opens a connection.
	PersistReports bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// AnalysisConfig holds analysis engine configuration
type AnalysisConfig struct {
	// ThresholdsFile optionally points at a YAML file overriding the
	// scoring band tables. Empty means contract defaults.
	ThresholdsFile string

	// MaxCapturedQueries caps how many statements one analyze request may
	// carry; anything beyond is ignored rather than rejected.
	MaxCapturedQueries int

	// ReportHistoryLimit bounds GET /reports responses.
	ReportHistoryLimit int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getIntEnv("DB_PORT", 5432),
			Database:       getEnv("DB_NAME", "mercury"),
			User:           getEnv("DB_USER", "mercury"),
			Password:       getEnv("DB_PASSWORD", ""),
			SSLMode:        getEnv("DB_SSLMODE", "prefer"),
			MaxConns:       getIntEnv("DB_MAX_CONNS", 10),
			MinConns:       getIntEnv("DB_MIN_CONNS", 2),
			PersistReports: getBoolEnv("PERSIST_REPORTS", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Analysis: AnalysisConfig{
			ThresholdsFile:     getEnv("ANALYSIS_THRESHOLDS_FILE", ""),
			MaxCapturedQueries: getIntEnv("ANALYSIS_MAX_CAPTURED_QUERIES", 10000),
			ReportHistoryLimit: getIntEnv("REPORT_HISTORY_LIMIT", 100),
		},
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets duration from environment variable with default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets integer from environment variable with default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets boolean from environment variable with default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return &ConfigError{Field: "SERVER_PORT", Message: "server port is required"}
	}
	if c.Database.PersistReports {
		if c.Database.Host == "" {
			return &ConfigError{Field: "DB_HOST", Message: "database host is required when report persistence is enabled"}
		}
		if c.Database.Database == "" {
			return &ConfigError{Field: "DB_NAME", Message: "database name is required when report persistence is enabled"}
		}
	}
	if c.Analysis.MaxCapturedQueries <= 0 {
		return &ConfigError{Field: "ANALYSIS_MAX_CAPTURED_QUERIES", Message: "must be positive"}
	}
	if c.Analysis.ReportHistoryLimit <= 0 {
		return &ConfigError{Field: "REPORT_HISTORY_LIMIT", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
