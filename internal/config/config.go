// Package config loads the freight service settings from the environment
// and the optional defaults file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agexparts/freight-service/pkg/kafka"
	"github.com/agexparts/freight-service/pkg/mongodb"
	"github.com/agexparts/freight-service/pkg/temporal"
	"github.com/agexparts/freight-service/pkg/tracing"
)

// Cache backends accepted by QUOTE_CACHE_BACKEND
const (
	CacheBackendMemory   = "memory"
	CacheBackendFile     = "file"
	CacheBackendMongo    = "mongo"
	CacheBackendPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	ServerAddr   string
	LogLevel     string
	DefaultsFile string

	Estes       EstesConfig
	Cache       CacheConfig
	Tracing     *tracing.Config
	MongoDB     *mongodb.Config
	PostgresDSN string
	Kafka       *kafka.Config
	Temporal    *temporal.Config
}

// EstesConfig holds carrier endpoints and credentials
type EstesConfig struct {
	AuthURL     string
	RatesURL    string
	APIKey      string
	BasicAuth   string // base64 user:password, sent as-is
	Account     string
	RunLog      bool
	HTTPTimeout time.Duration
}

// CacheConfig selects the fallback quote store
type CacheConfig struct {
	Backend string
	File    string
	TTL     time.Duration
}

// Load reads configuration from the process environment
func Load(serviceName string) *Config {
	return load(serviceName, os.Getenv)
}

func load(serviceName string, lookup func(string) string) *Config {
	getEnv := func(key, defaultValue string) string {
		if value := lookup(key); value != "" {
			return value
		}
		return defaultValue
	}

	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", tracingConfig.OTLPEndpoint)
	tracingConfig.Environment = getEnv("ENVIRONMENT", tracingConfig.Environment)
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "false") == "true"

	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", mongoConfig.URI)
	mongoConfig.Database = getEnv("MONGODB_DATABASE", mongoConfig.Database)

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = kafka.ParseBrokers(lookup("KAFKA_BROKERS"))
	kafkaConfig.ClientID = serviceName

	temporalConfig := temporal.DefaultConfig()
	temporalConfig.HostPort = getEnv("TEMPORAL_HOST", temporalConfig.HostPort)
	temporalConfig.Namespace = getEnv("TEMPORAL_NAMESPACE", temporalConfig.Namespace)

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DefaultsFile: lookup("ESTES_DEFAULTS_FILE"),
		Estes: EstesConfig{
			AuthURL:     getEnv("ESTES_AUTH_URL", "https://cloudapi.estes-express.com/authenticate"),
			RatesURL:    getEnv("ESTES_RATES_URL", "https://cloudapi.estes-express.com/v1/rate-quotes"),
			APIKey:      lookup("ESTES_API_KEY"),
			BasicAuth:   lookup("ESTES_BASIC_AUTH"),
			Account:     lookup("ESTES_ACCOUNT"),
			RunLog:      parseBool(lookup("ESTES_RUN_LOG")),
			HTTPTimeout: parseDuration(lookup("ESTES_HTTP_TIMEOUT"), 30*time.Second),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(getEnv("QUOTE_CACHE_BACKEND", CacheBackendFile)),
			File:    getEnv("QUOTE_CACHE_FILE", "estes-last-quote.json"),
			TTL:     parseDuration(lookup("QUOTE_CACHE_TTL"), time.Hour),
		},
		Tracing:     tracingConfig,
		MongoDB:     mongoConfig,
		PostgresDSN: lookup("POSTGRES_DSN"),
		Kafka:       kafkaConfig,
		Temporal:    temporalConfig,
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil && d > 0 {
		return d
	}
	return fallback
}
