package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestLoadDefaultsWhenEnvironmentEmpty(t *testing.T) {
	cfg := load("freight-service", lookupFrom(nil))

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 30*time.Second, cfg.Estes.HTTPTimeout)
	assert.Equal(t, CacheBackendFile, cfg.Cache.Backend)
	assert.Equal(t, "estes-last-quote.json", cfg.Cache.File)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Estes.RunLog)
}

func TestLoadReadsEnvironment(t *testing.T) {
	cfg := load("freight-service", lookupFrom(map[string]string{
		"SERVER_ADDR":         ":9000",
		"ESTES_API_KEY":       "key",
		"ESTES_BASIC_AUTH":    "dXNlcjpwYXNz",
		"ESTES_ACCOUNT":       "0123456",
		"ESTES_RUN_LOG":       "true",
		"ESTES_HTTP_TIMEOUT":  "5s",
		"QUOTE_CACHE_BACKEND": "Postgres",
		"QUOTE_CACHE_TTL":     "bogus",
		"KAFKA_BROKERS":       "k1:9092, k2:9092",
		"TEMPORAL_NAMESPACE":  "freight",
	}))

	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, "key", cfg.Estes.APIKey)
	assert.Equal(t, "dXNlcjpwYXNz", cfg.Estes.BasicAuth)
	assert.Equal(t, "0123456", cfg.Estes.Account)
	assert.True(t, cfg.Estes.RunLog)
	assert.Equal(t, 5*time.Second, cfg.Estes.HTTPTimeout)
	assert.Equal(t, CacheBackendPostgres, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "freight", cfg.Temporal.Namespace)
}

func TestLoadDefaultsOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
classification: "85"
tareWeight: 25
origin:
  name: AgEx Parts Amarillo
  address1: 10 Grand St
  city: Amarillo
  stateProvince: TX
  postalCode: "79101"
`), 0o600))

	defaults, err := LoadDefaults(path, "0123456")
	require.NoError(t, err)

	assert.Equal(t, "85", defaults.Classification)
	assert.InDelta(t, 25.0, defaults.TareWeight, 1e-9)
	assert.Equal(t, "79101", defaults.Origin.PostalCode)
	assert.Equal(t, "Pounds", defaults.WeightUnit)
	assert.Equal(t, "0123456", defaults.Payment.Account)
}

func TestLoadDefaultsRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tareWeight: -4\n"), 0o600))

	_, err := LoadDefaults(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TareWeight")
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	_, err := LoadDefaults(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
}
