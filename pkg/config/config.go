package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tair/lot-reservation/pkg/database"
	"github.com/tair/lot-reservation/pkg/tracing"
)

// Config is the full service configuration. Environment variables provide the
// defaults and a YAML file named by CONFIG_FILE overrides them.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Database    database.Config   `yaml:"database"`
	Reservation ReservationConfig `yaml:"reservation"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
	Tracing     tracing.Config    `yaml:"tracing"`
}

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	// RequestTimeout bounds a single HTTP request
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// IsDevelopment reports whether pretty logging should be used
func (s ServiceConfig) IsDevelopment() bool {
	return s.Environment == "development"
}

type ReservationConfig struct {
	DefaultExpirationDays int `yaml:"default_expiration_days"`
	// SweepInterval of 0 disables the expired reservation sweeper
	SweepInterval time.Duration `yaml:"sweep_interval"`
	ExpiredReason string        `yaml:"expired_reason"`
}

type KafkaConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Brokers            []string `yaml:"brokers"`
	ReservationsTopic  string   `yaml:"reservations_topic"`
	OrderRejectedTopic string   `yaml:"order_rejected_topic"`
	ConsumerGroup      string   `yaml:"consumer_group"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Enabled reports whether the availability cache should be used
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Load reads the environment and then the optional YAML overlay
func Load() (*Config, error) {
	cfg := FromEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a config from environment variables with defaults
func FromEnv() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:           getEnv("SERVICE_NAME", "reservation-service"),
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "reservationdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Reservation: ReservationConfig{
			DefaultExpirationDays: getEnvInt("RESERVATION_EXPIRATION_DAYS", 3),
			SweepInterval:         getEnvDuration("RESERVATION_SWEEP_INTERVAL", 0),
			ExpiredReason:         getEnv("RESERVATION_EXPIRED_REASON", "reservation expired"),
		},
		Kafka: KafkaConfig{
			Enabled:            getEnvBool("KAFKA_ENABLED", false),
			Brokers:            getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			ReservationsTopic:  getEnv("KAFKA_RESERVATIONS_TOPIC", "stock-reservations"),
			OrderRejectedTopic: getEnv("KAFKA_ORDER_REJECTED_TOPIC", "order-rejected"),
			ConsumerGroup:      getEnv("KAFKA_CONSUMER_GROUP", "reservation-service"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_TTL", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "lot-reservation"),
			TokenTTL:  getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Tracing: tracing.Config{
			ServiceName:    getEnv("SERVICE_NAME", "reservation-service"),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			SampleRatio:    getEnvFloat("TRACING_SAMPLE_RATIO", 1),
			Disabled:       getEnvBool("TRACING_DISABLED", false),
		},
	}
}

// MergeFile overlays the YAML file at path. Keys absent from the file keep
// their current value.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return c.Merge(data)
}

// Merge overlays YAML bytes onto the config
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail at runtime
func (c *Config) Validate() error {
	if c.Reservation.DefaultExpirationDays <= 0 {
		return fmt.Errorf("reservation.default_expiration_days must be positive, got %d", c.Reservation.DefaultExpirationDays)
	}
	if c.Reservation.SweepInterval < 0 {
		return fmt.Errorf("reservation.sweep_interval cannot be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
