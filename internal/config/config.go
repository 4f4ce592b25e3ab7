package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Compliance ComplianceConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	QueryTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// ComplianceConfig - weights for the compliance score and the statutory
// return due day. Weights are read as whole numbers, e.g. 30/40/30.
type ComplianceConfig struct {
	RegistrationWeight decimal.Decimal
	FilingWeight       decimal.Decimal
	PaymentWeight      decimal.Decimal
	ReturnDueDay       int
}

func Load() (*Config, error) {
	// A missing .env file is fine in deployed environments.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	queryTimeout, err := time.ParseDuration(getEnv("DB_QUERY_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_QUERY_TIMEOUT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:         getEnv("DB_HOST", "localhost"),
		Port:         dbPort,
		User:         getEnv("DB_USER", "postgres"),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", "fiscal"),
		SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		QueryTimeout: queryTimeout,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Compliance configuration
	config.Compliance, err = loadComplianceConfig()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadComplianceConfig() (ComplianceConfig, error) {
	cfg := ComplianceConfig{}

	for _, w := range []struct {
		env      string
		fallback string
		dst      *decimal.Decimal
	}{
		{"COMPLIANCE_REGISTRATION_WEIGHT", "30", &cfg.RegistrationWeight},
		{"COMPLIANCE_FILING_WEIGHT", "40", &cfg.FilingWeight},
		{"COMPLIANCE_PAYMENT_WEIGHT", "30", &cfg.PaymentWeight},
	} {
		value, err := decimal.NewFromString(getEnv(w.env, w.fallback))
		if err != nil || value.IsNegative() {
			return ComplianceConfig{}, fmt.Errorf("invalid %s", w.env)
		}
		*w.dst = value
	}

	dueDay, err := strconv.Atoi(getEnv("RETURN_DUE_DAY", "14"))
	if err != nil || dueDay < 1 || dueDay > 28 {
		return ComplianceConfig{}, fmt.Errorf("invalid RETURN_DUE_DAY")
	}
	cfg.ReturnDueDay = dueDay

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
