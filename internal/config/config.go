// Package config assembles service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/b2b-platform/procurement-service/pkg/kafka"
	"github.com/b2b-platform/procurement-service/pkg/mongodb"
)

// Config holds application configuration
type Config struct {
	ServiceName string
	ServerAddr  string
	Environment string

	MongoDB *mongodb.Config
	Kafka   *kafka.Config

	// Dispatcher settings
	DispatchMaxHistory int

	// Tracing settings
	OTLPEndpoint   string
	TracingEnabled bool
}

// Load builds the configuration from environment variables with defaults
func Load(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		ServerAddr:  getEnv("SERVER_ADDR", ":8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "procurement"),
			ConnectTimeout: getDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			MaxPoolSize:    100,
			MinPoolSize:    10,
			Username:       getEnv("MONGODB_USERNAME", ""),
			Password:       getEnv("MONGODB_PASSWORD", ""),
			AuthDB:         getEnv("MONGODB_AUTH_DB", "admin"),
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},

		Kafka: &kafka.Config{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ClientID:     serviceName,
			BatchSize:    getInt("KAFKA_BATCH_SIZE", 100),
			BatchTimeout: getDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
			RequiredAcks: getInt("KAFKA_REQUIRED_ACKS", -1),
		},

		DispatchMaxHistory: getInt("DISPATCH_MAX_HISTORY", 100),

		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TracingEnabled: getEnv("TRACING_ENABLED", "true") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
