package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	BaseURL     string

	// CORSAllowedOrigins are the only origins allowed credentialed requests
	CORSAllowedOrigins []string

	Database DatabaseConfig

	RedisURL   string
	SessionTTL time.Duration

	Kafka KafkaConfig
	Mail  MailConfig

	SecretKey             string
	VerificationTokenDays int
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type MailConfig struct {
	FromName       string
	FromAddress    string
	SendGridAPIKey string
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "online_exam"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL: getEnvDuration("SESSION_TTL", 14*24*time.Hour),
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "exam-service"),
		},
		Mail: MailConfig{
			FromName:       getEnv("DEFAULT_FROM_NAME", "Online Exam System"),
			FromAddress:    getEnv("DEFAULT_FROM_EMAIL", "no-reply@example.com"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		},
		SecretKey:             os.Getenv("SECRET_KEY"),
		VerificationTokenDays: getEnvInt("VERIFICATION_TOKEN_DAYS", 3),
	}

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", cfg.BaseURL))

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("SECRET_KEY is required outside development (APP_ENV=%q)", c.Environment)
		}
		c.SecretKey = "insecure-development-secret"
	}
	if c.VerificationTokenDays < 1 {
		return fmt.Errorf("VERIFICATION_TOKEN_DAYS must be positive, got %d", c.VerificationTokenDays)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
