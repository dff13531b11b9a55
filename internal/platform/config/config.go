package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. FromEnv keeps main lean; every
// field has a development-friendly default.
type Config struct {
	Addr          string
	JWTSigningKey string

	// DatabaseURL selects postgres persistence; when empty the service runs
	// on in-memory stores (dev mode, unit tests).
	DatabaseURL string

	Redis RedisConfig

	// Kafka notification publishing; when Brokers is empty notifications go
	// through the in-process dispatcher instead.
	Kafka KafkaConfig

	Certificate CertificateConfig
}

// RedisConfig configures the optional redis-backed blood-bag reservations.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the notification topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CertificateConfig configures the external certificate issuer.
type CertificateConfig struct {
	BaseURL string
	Timeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("HEMOCAMP_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("KAFKA_NOTIFICATION_TOPIC", "hemocamp.notifications"),
		},
		Certificate: CertificateConfig{
			BaseURL: os.Getenv("CERTIFICATE_SERVICE_URL"),
			Timeout: envDuration("CERTIFICATE_TIMEOUT", 3*time.Second),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
