package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Resolver ResolverConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AdminConfig struct {
	// JWTSecret signs and verifies the HS256 bearer tokens that guard the
	// administrative API (tenant onboarding, lifecycle, migrations).
	JWTSecret string
	Issuer    string
}

type ResolverConfig struct {
	// CacheTTL bounds how long a hostname->tenant mapping may be served from
	// Redis before falling back to the registry.
	CacheTTL time.Duration
}

type EmailConfig struct {
	Enabled   bool
	APIKey    string
	FromEmail string
	FromName  string
	// OpsEmail receives migration failure reports.
	OpsEmail string
}

func Load() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "grc"),
			Password: getEnv("DB_PASSWORD", "grc"),
			DBName:   getEnv("DB_NAME", "grcdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
			Issuer:    getEnv("ADMIN_JWT_ISSUER", "grc-platform"),
		},
		Resolver: ResolverConfig{
			CacheTTL: getDurationEnv("RESOLVER_CACHE_TTL", 5*time.Minute),
		},
		Email: EmailConfig{
			Enabled:   getBoolEnv("EMAIL_ENABLED", false),
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("EMAIL_FROM", "platform@grc.example.com"),
			FromName:  getEnv("EMAIL_FROM_NAME", "GRC Platform"),
			OpsEmail:  getEnv("EMAIL_OPS", ""),
		},
	}

	if cfg.Admin.JWTSecret == "" && cfg.Server.Environment != "development" {
		return nil, fmt.Errorf("ADMIN_JWT_SECRET is required outside development")
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
