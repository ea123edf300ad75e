package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap/zapcore"
)

const (
	ServiceName    = "retail-inventory"
	ServiceVersion = "0.1.0"
)

const (
	DefaultHTTPAddr    = ":8082"
	DefaultOrdersTopic = "OrderSettled"
)

type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	KafkaBroker     string
	OrdersTopic     string
	LogLevel        zapcore.Level
	StrictContracts bool
}

// LoadConfig reads the configuration from the environment. Only the log
// level and the strict flag are validated; the database and broker are
// optional and disable their journal when empty.
func LoadConfig() (*Config, error) {
	config := &Config{
		HTTPAddr:    getenv("STORE_HTTP_ADDR", DefaultHTTPAddr),
		DatabaseURL: os.Getenv("STORE_DATABASE_URL"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		OrdersTopic: getenv("KAFKA_ORDERS_TOPIC", DefaultOrdersTopic),
	}

	level, err := zapcore.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	config.LogLevel = level

	if v := os.Getenv("STORE_STRICT_CONTRACTS"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("STORE_STRICT_CONTRACTS must be a boolean, got %q", v)
		}
		config.StrictContracts = strict
	}

	return config, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
