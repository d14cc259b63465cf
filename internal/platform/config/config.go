package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr            = ":8080"
	defaultJWTSigningKey   = "dev-secret-key-change-in-production"
	defaultAuthLogin       = "aprovame"
	defaultBatchTopic      = "payables_batch_queue"
	defaultKafkaGroupID    = "aprovame-batch-processor"
	defaultFallbackEmail   = "admin@bankme.com"
	defaultSMTPFrom        = "noreply@bankme.com"
	defaultTokenTTL        = 30 * 24 * time.Hour
	defaultBatchWorkers    = 2
	defaultQueueBuffer     = 64
	defaultBudgetBase      = 30 * time.Second
	defaultBudgetPerItem   = 50 * time.Millisecond
	defaultDedupTTL        = 24 * time.Hour
	defaultLoginRate       = 1.0
	defaultLoginBurst      = 5
	defaultRequestTimeout  = 30 * time.Second
	defaultShutdownTimeout = 15 * time.Second
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	TrustedProxies  string

	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Batch    BatchConfig
}

type DatabaseConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers    string
	GroupID    string
	BatchTopic string
}

// Enabled reports whether batches travel over Kafka instead of the in-process queue.
func (k KafkaConfig) Enabled() bool { return k.Brokers != "" }

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AuthConfig struct {
	JWTSigningKey string
	TokenTTL      time.Duration
	Login         string
	// PasswordHash is a bcrypt hash. When empty, Password is hashed at startup.
	PasswordHash string
	Password     string
	LoginRate    float64
	LoginBurst   int
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	FallbackEmail string
}

// Enabled reports whether reports are mailed rather than logged.
func (s SMTPConfig) Enabled() bool { return s.Host != "" }

type BatchConfig struct {
	Workers       int
	QueueBuffer   int
	BudgetBase    time.Duration
	BudgetPerItem time.Duration
	Dedup         bool
	DedupTTL      time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables always win.
func FromEnv() Server {
	_ = godotenv.Load() //nolint:errcheck // a missing .env file is the normal case in containers

	return Server{
		Addr:            getString("ADDR", defaultAddr),
		Environment:     getString("ENVIRONMENT", "development"),
		LogLevel:        getString("LOG_LEVEL", "info"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		TrustedProxies:  os.Getenv("TRUSTED_PROXIES"),
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			GroupID:    getString("KAFKA_GROUP_ID", defaultKafkaGroupID),
			BatchTopic: getString("BATCH_TOPIC", defaultBatchTopic),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			JWTSigningKey: getString("JWT_SIGNING_KEY", defaultJWTSigningKey),
			TokenTTL:      getDuration("TOKEN_TTL", defaultTokenTTL),
			Login:         getString("AUTH_LOGIN", defaultAuthLogin),
			PasswordHash:  os.Getenv("AUTH_PASSWORD_HASH"),
			Password:      getString("AUTH_PASSWORD", defaultAuthLogin),
			LoginRate:     getFloat("AUTH_LOGIN_RATE", defaultLoginRate),
			LoginBurst:    getInt("AUTH_LOGIN_BURST", defaultLoginBurst),
		},
		SMTP: SMTPConfig{
			Host:          os.Getenv("SMTP_HOST"),
			Port:          getInt("SMTP_PORT", 587),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			From:          getString("SMTP_FROM", defaultSMTPFrom),
			FallbackEmail: getString("NOTIFY_FALLBACK_EMAIL", defaultFallbackEmail),
		},
		Batch: BatchConfig{
			Workers:       getInt("BATCH_WORKERS", defaultBatchWorkers),
			QueueBuffer:   getInt("BATCH_QUEUE_BUFFER", defaultQueueBuffer),
			BudgetBase:    getDuration("BATCH_BUDGET_BASE", defaultBudgetBase),
			BudgetPerItem: getDuration("BATCH_BUDGET_PER_ITEM", defaultBudgetPerItem),
			Dedup:         getBool("BATCH_DEDUP", false),
			DedupTTL:      getDuration("BATCH_DEDUP_TTL", defaultDedupTTL),
		},
	}
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
