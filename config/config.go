package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Server       ServerConfig
	Logger       LoggerConfig
	Postgres     PostgresConfig
	JWT          JWTConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Elastic      ElasticsearchConfig
	Metrics      MetricsConfig
	Tracing      TracingConfig
	Notification NotificationConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
	// HTTPPort serves /health and /metrics.
	HTTPPort        string
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver           string
	SQLitePath       string
	Host             string
	Port             string
	User             string
	Password         string
	DBName           string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  int
	ConnMaxIdleTime  int
	LockTimeout      time.Duration
	StatementTimeout time.Duration
	AutoMigrate      bool
}

type JWTConfig struct {
	SecretKey string
	// TrustMetadata accepts x-user-id / x-user-role headers set by a gateway.
	TrustMetadata bool
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled             bool
	Brokers             []string
	OrderEventsTopic    string
	NotificationGroupID string
}

type ElasticsearchConfig struct {
	Enabled   bool
	Addresses []string
	Username  string
	Password  string
}

type MetricsConfig struct {
	Prefix string
}

type TracingConfig struct {
	Endpoint string
	Insecure bool
}

type NotificationConfig struct {
	Locale      string
	QueueSize   int
	SendTimeout time.Duration
	// InProcessWorker runs the notification listener inside the API server.
	InProcessWorker bool
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", "dev"),
			GRPCPort:        getEnv("GRPC_PORT", ":8083"),
			HTTPPort:        getEnv("HTTP_PORT", ":9083"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			SQLitePath:       getEnv("SQLITE_PATH", "omnipos_order.db"),
			Host:             getEnv("POSTGRES_HOST", "localhost"),
			Port:             getEnv("POSTGRES_PORT", "5433"),
			User:             getEnv("POSTGRES_USER", "omnipos"),
			Password:         getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:           getEnv("POSTGRES_DB", "omnipos_order"),
			SSLMode:          getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:     getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime:  getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			LockTimeout:      time.Duration(getEnvInt("POSTGRES_LOCK_TIMEOUT_MS", 5000)) * time.Millisecond,
			StatementTimeout: time.Duration(getEnvInt("POSTGRES_STATEMENT_TIMEOUT_MS", 30000)) * time.Millisecond,
			AutoMigrate:      getEnvBool("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			SecretKey:     getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
			TrustMetadata: getEnvBool("AUTH_TRUST_METADATA", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:             getEnvBool("KAFKA_ENABLED", true),
			Brokers:             getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrderEventsTopic:    getEnv("KAFKA_TOPIC_ORDER_EVENTS", "orders.events"),
			NotificationGroupID: getEnv("KAFKA_GROUP_NOTIFICATION", "order-notifications"),
		},
		Elastic: ElasticsearchConfig{
			Enabled:   getEnvBool("ELASTICSEARCH_ENABLED", true),
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "omnipos_order"),
		},
		Tracing: TracingConfig{
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		Notification: NotificationConfig{
			Locale:          getEnv("NOTIFICATION_LOCALE", "en"),
			QueueSize:       getEnvInt("NOTIFICATION_QUEUE_SIZE", 1024),
			SendTimeout:     getEnvDuration("NOTIFICATION_SEND_TIMEOUT", 5*time.Second),
			InProcessWorker: getEnvBool("NOTIFICATION_IN_PROCESS", false),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev" || c.Server.AppEnv == "development"
}

// LogFields summarises the configuration for the startup log. Secrets are omitted.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("app_env", c.Server.AppEnv),
		zap.String("grpc_port", c.Server.GRPCPort),
		zap.String("http_port", c.Server.HTTPPort),
		zap.String("db_driver", c.Postgres.Driver),
		zap.Duration("lock_timeout", c.Postgres.LockTimeout),
		zap.Bool("redis_enabled", c.Redis.Enabled),
		zap.Bool("kafka_enabled", c.Kafka.Enabled),
		zap.String("order_events_topic", c.Kafka.OrderEventsTopic),
		zap.Bool("elasticsearch_enabled", c.Elastic.Enabled),
		zap.Bool("tracing_enabled", c.Tracing.Endpoint != ""),
		zap.String("notification_locale", c.Notification.Locale),
		zap.Bool("notification_in_process", c.Notification.InProcessWorker),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}
