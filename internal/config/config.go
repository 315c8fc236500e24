// Package config provides environment-driven configuration management.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the service
type Config struct {
	Environment string
	Service     ServiceConfig
	Logging     LoggingConfig
	DB          DBConfig
}

// ServiceConfig holds service-specific configuration
type ServiceConfig struct {
	Name           string
	Port           string
	Host           string
	Timeout        time.Duration
	AllowedOrigins string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// DBConfig holds database configuration
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
}

// LoadConfig loads configuration from environment variables with
// local-development defaults.
func LoadConfig(serviceName string) *Config {
	env := GetEnvOrDefault("ENVIRONMENT", "local")

	return &Config{
		Environment: env,
		Service: ServiceConfig{
			Name:           serviceName,
			Port:           GetEnvOrDefault("PORT", "8080"),
			Host:           GetEnvOrDefault("HOST", "0.0.0.0"),
			Timeout:        getEnvDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
			AllowedOrigins: GetEnvOrDefault("ALLOWED_ORIGINS", "*"),
		},
		Logging: LoggingConfig{
			Level:  GetEnvOrDefault("LOG_LEVEL", defaultLogLevel(env)),
			Format: GetEnvOrDefault("LOG_FORMAT", "json"),
		},
		DB: DBConfig{
			Host:     GetEnvOrDefault("DB_HOST", "localhost"),
			Port:     GetEnvOrDefault("DB_PORT", "5432"),
			Username: GetEnvOrDefault("DB_USERNAME", "postgres"),
			Password: GetEnvOrDefault("DB_PASSWORD", "password"),
			Database: GetEnvOrDefault("DB_DATABASE", "registration"),
			SSLMode:  GetEnvOrDefault("DB_SSLMODE", "disable"),
		},
	}
}

// GetEnvOrDefault returns the environment variable value or a default
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func defaultLogLevel(env string) string {
	if env == "production" {
		return "info"
	}
	return "debug"
}
