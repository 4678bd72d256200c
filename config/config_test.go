package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, BrokerNone, cfg.Notify.Broker)
	assert.Equal(t, "wishlist.price-observed", cfg.Kafka.TopicPriceObserved)
	assert.Equal(t, 5*time.Minute, cfg.Redis.HistoryTTL)
	assert.Equal(t, "first", cfg.Kafka.StartOffset)
	assert.Equal(t, "snappy", cfg.Kafka.Compression)
	assert.Equal(t, 10*time.Minute, cfg.HTTP.RateLimitIdleTTL)
	assert.Empty(t, cfg.HTTP.TrustedProxies)
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, `
http:
  port: "9000"
log:
  level: debug
pg:
  url: postgres://localhost/wishlist
kafka:
  brokers: [k1:9092]
`)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://localhost/wishlist", cfg.PG.URL)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without url", env: map[string]string{"STORAGE_DRIVER": "postgres"}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "nats without url", env: map[string]string{"STORAGE_DRIVER": "memory", "NOTIFY_BROKER": "nats"}},
		{name: "amqp without url", env: map[string]string{"STORAGE_DRIVER": "memory", "NOTIFY_BROKER": "amqp"}},
		{name: "unknown broker", env: map[string]string{"STORAGE_DRIVER": "memory", "NOTIFY_BROKER": "smtp"}},
		{name: "unknown start offset", env: map[string]string{"STORAGE_DRIVER": "memory", "KAFKA_START_OFFSET": "middle"}},
		{name: "unknown compression", env: map[string]string{"STORAGE_DRIVER": "memory", "KAFKA_COMPRESSION": "brotli"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_ConnectionTuning(t *testing.T) {
	path := writeFile(t, `
storage:
  driver: memory
pg:
  connAttempts: 3
  connTimeout: 500ms
redis:
  connAttempts: 4
kafka:
  maxWait: 2s
  commitInterval: 3s
  retryBackoff: 100ms
  startOffset: last
  writeTimeout: 4s
  batchTimeout: 20ms
  compression: zstd
notify:
  amqpConnAttempts: 5
  amqpConnTimeout: 1s
`)
	t.Setenv("REDIS_CONN_TIMEOUT", "250ms")
	t.Setenv("HTTP_TRUSTED_PROXIES", "10.0.0.1,10.0.0.0/8")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.PG.ConnAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.PG.ConnTimeout)
	assert.Equal(t, 4, cfg.Redis.ConnAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.ConnTimeout)
	assert.Equal(t, 2*time.Second, cfg.Kafka.MaxWait)
	assert.Equal(t, 3*time.Second, cfg.Kafka.CommitInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Kafka.RetryBackoff)
	assert.Equal(t, "last", cfg.Kafka.StartOffset)
	assert.Equal(t, 4*time.Second, cfg.Kafka.WriteTimeout)
	assert.Equal(t, 20*time.Millisecond, cfg.Kafka.BatchTimeout)
	assert.Equal(t, "zstd", cfg.Kafka.Compression)
	assert.Equal(t, 5, cfg.Notify.AMQPConnAttempts)
	assert.Equal(t, time.Second, cfg.Notify.AMQPConnTimeout)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, cfg.HTTP.TrustedProxies)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
