package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/kedr891/wishlist-tracker/pkg/kafka"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	BrokerNone  = "none"
	BrokerKafka = "kafka"
	BrokerNATS  = "nats"
	BrokerAMQP  = "amqp"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	PG      PGConfig      `yaml:"pg"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Notify  NotifyConfig  `yaml:"notify"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type AppConfig struct {
	Name    string `yaml:"name" env:"APP_NAME"`
	Version string `yaml:"version" env:"APP_VERSION"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT"`
	RateLimitRPS    float64       `yaml:"rateLimitRps" env:"HTTP_RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rateLimitBurst" env:"HTTP_RATE_LIMIT_BURST"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	// TrustedProxies may set X-Forwarded-For. Empty means the client IP is the peer address.
	TrustedProxies []string `yaml:"trustedProxies" env:"HTTP_TRUSTED_PROXIES" envSeparator:","`
	// RateLimitIdleTTL drops per-IP limiters not seen for this long.
	RateLimitIdleTTL time.Duration `yaml:"rateLimitIdleTtl" env:"HTTP_RATE_LIMIT_IDLE_TTL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER"`
}

type PGConfig struct {
	PoolMax      int           `yaml:"poolMax" env:"PG_POOL_MAX"`
	URL          string        `yaml:"url" env:"PG_URL"`
	ConnAttempts int           `yaml:"connAttempts" env:"PG_CONN_ATTEMPTS"`
	ConnTimeout  time.Duration `yaml:"connTimeout" env:"PG_CONN_TIMEOUT"`
}

type RedisConfig struct {
	Enabled    bool          `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr       string        `yaml:"addr" env:"REDIS_ADDR"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db" env:"REDIS_DB"`
	HistoryTTL time.Duration `yaml:"historyTtl" env:"REDIS_HISTORY_TTL"`

	ConnAttempts int           `yaml:"connAttempts" env:"REDIS_CONN_ATTEMPTS"`
	ConnTimeout  time.Duration `yaml:"connTimeout" env:"REDIS_CONN_TIMEOUT"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
	TopicPriceObserved string   `yaml:"topicPriceObserved" env:"KAFKA_TOPIC_PRICE_OBSERVED"`
	TopicNotifications string   `yaml:"topicNotifications" env:"KAFKA_TOPIC_NOTIFICATIONS"`
	GroupPriceConsumer string   `yaml:"groupPriceConsumer" env:"KAFKA_GROUP_PRICE_CONSUMER"`
	MaxRetries         int      `yaml:"maxRetries" env:"KAFKA_MAX_RETRIES"`
	// EmbeddedConsumer runs the price consumer inside the API process.
	EmbeddedConsumer bool `yaml:"embeddedConsumer" env:"KAFKA_EMBEDDED_CONSUMER"`

	MaxWait        time.Duration `yaml:"maxWait" env:"KAFKA_MAX_WAIT"`
	CommitInterval time.Duration `yaml:"commitInterval" env:"KAFKA_COMMIT_INTERVAL"`
	RetryBackoff   time.Duration `yaml:"retryBackoff" env:"KAFKA_RETRY_BACKOFF"`
	// StartOffset: first | last, used when the group has no committed offset.
	StartOffset string `yaml:"startOffset" env:"KAFKA_START_OFFSET"`

	WriteTimeout time.Duration `yaml:"writeTimeout" env:"KAFKA_WRITE_TIMEOUT"`
	BatchTimeout time.Duration `yaml:"batchTimeout" env:"KAFKA_BATCH_TIMEOUT"`
	// Compression: none | gzip | snappy | lz4 | zstd
	Compression string `yaml:"compression" env:"KAFKA_COMPRESSION"`
}

type NotifyConfig struct {
	Broker       string `yaml:"broker" env:"NOTIFY_BROKER"`
	NATSURL      string `yaml:"natsUrl" env:"NOTIFY_NATS_URL"`
	NATSSubject  string `yaml:"natsSubject" env:"NOTIFY_NATS_SUBJECT"`
	AMQPURL      string `yaml:"amqpUrl" env:"NOTIFY_AMQP_URL"`
	AMQPExchange string `yaml:"amqpExchange" env:"NOTIFY_AMQP_EXCHANGE"`

	AMQPConnAttempts int           `yaml:"amqpConnAttempts" env:"NOTIFY_AMQP_CONN_ATTEMPTS"`
	AMQPConnTimeout  time.Duration `yaml:"amqpConnTimeout" env:"NOTIFY_AMQP_CONN_TIMEOUT"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED"`
}

// NewConfig loads the file named by CONFIG_PATH (if any) and the environment.
func NewConfig() (*Config, error) {
	return LoadConfig(os.Getenv("CONFIG_PATH"))
}

// LoadConfig layers defaults, the YAML file and environment variables, in that order.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaults()

	if strings.TrimSpace(filename) != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{Name: "wishlist-tracker", Version: "dev"},
		HTTP: HTTPConfig{
			Port:             "8080",
			RateLimitRPS:     20,
			RateLimitBurst:   40,
			RateLimitIdleTTL: 10 * time.Minute,
			ShutdownTimeout:  10 * time.Second,
		},
		Log:     LogConfig{Level: "info", Format: "console"},
		Storage: StorageConfig{Driver: StorageDriverPostgres},
		PG:      PGConfig{PoolMax: 10, ConnAttempts: 10, ConnTimeout: time.Second},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			HistoryTTL:   5 * time.Minute,
			ConnAttempts: 10,
			ConnTimeout:  time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:            []string{"localhost:9092"},
			TopicPriceObserved: "wishlist.price-observed",
			TopicNotifications: "wishlist.notifications",
			GroupPriceConsumer: "wishlist-price-consumer",
			MaxRetries:         3,
			MaxWait:            10 * time.Second,
			CommitInterval:     time.Second,
			RetryBackoff:       time.Second,
			StartOffset:        "first",
			WriteTimeout:       10 * time.Second,
			BatchTimeout:       50 * time.Millisecond,
			Compression:        "snappy",
		},
		Notify: NotifyConfig{
			Broker:           BrokerNone,
			NATSSubject:      "wishlist.notifications",
			AMQPExchange:     "wishlist.notifications",
			AMQPConnAttempts: 10,
			AMQPConnTimeout:  2 * time.Second,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.PG.URL == "" {
			return fmt.Errorf("PG_URL is required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Notify.Broker {
	case "", BrokerNone:
		c.Notify.Broker = BrokerNone
	case BrokerKafka:
		if c.Kafka.TopicNotifications == "" {
			return fmt.Errorf("KAFKA_TOPIC_NOTIFICATIONS is required for the kafka notify broker")
		}
	case BrokerNATS:
		if c.Notify.NATSURL == "" {
			return fmt.Errorf("NOTIFY_NATS_URL is required for the nats notify broker")
		}
	case BrokerAMQP:
		if c.Notify.AMQPURL == "" {
			return fmt.Errorf("NOTIFY_AMQP_URL is required for the amqp notify broker")
		}
	default:
		return fmt.Errorf("unknown notify broker %q", c.Notify.Broker)
	}

	if c.usesKafka() && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	if _, err := kafka.ParseStartOffset(c.Kafka.StartOffset); err != nil {
		return err
	}
	if _, err := kafka.ParseCompression(c.Kafka.Compression); err != nil {
		return err
	}

	if c.HTTP.RateLimitRPS < 0 || c.HTTP.RateLimitBurst < 0 {
		return fmt.Errorf("http rate limit must be non-negative")
	}

	return nil
}

func (c *Config) usesKafka() bool {
	return c.Notify.Broker == BrokerKafka || c.Kafka.EmbeddedConsumer
}
