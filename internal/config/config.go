package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// TelegramConfig holds Bot API client and webhook settings.
type TelegramConfig struct {
	Token             string
	APIURL            string
	FileURL           string
	WebhookSecret     string
	RequestTimeoutSec int
	GetFileTimeoutSec int
	FileCacheSize     int
	FileCacheTTLSec   int
}

// RedisConfig holds settings for webhook update de-duplication. Empty Addr disables it.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DedupTTLSec int
}

// AMQPConfig holds settings for archive event publishing. Empty URL disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	LogLevel slog.Level
	Database DatabaseConfig
	MinIO    MinIOConfig
	Telegram TelegramConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		LogLevel: getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Telegram: TelegramConfig{
			Token:             getEnv("TELEGRAM_BOT_TOKEN", ""),
			APIURL:            getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			FileURL:           getEnv("TELEGRAM_FILE_URL", "https://api.telegram.org/file"),
			WebhookSecret:     getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
			RequestTimeoutSec: getEnvInt("TELEGRAM_REQUEST_TIMEOUT_SEC", 10),
			GetFileTimeoutSec: getEnvInt("TELEGRAM_GET_FILE_TIMEOUT_SEC", 0),
			FileCacheSize:     getEnvInt("TELEGRAM_FILE_CACHE_SIZE", 1024),
			FileCacheTTLSec:   getEnvInt("TELEGRAM_FILE_CACHE_TTL_SEC", 3000),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			DedupTTLSec: getEnvInt("REDIS_DEDUP_TTL_SEC", 86400),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "documents"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvLevel(key string, def slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.TrimSpace(v))); err == nil {
			return lvl
		}
	}
	return def
}
