package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_GET_FILE_TIMEOUT_SEC", "5")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 5, cfg.Telegram.GetFileTimeoutSec)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"TELEGRAM_API_URL", "TELEGRAM_FILE_URL", "AMQP_URL", "AMQP_EXCHANGE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIURL)
	assert.Equal(t, "https://api.telegram.org/file", cfg.Telegram.FileURL)
	assert.Equal(t, 10, cfg.Telegram.RequestTimeoutSec)
	assert.Empty(t, cfg.AMQP.URL)
	assert.Equal(t, "documents", cfg.AMQP.Exchange)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvLevel(t *testing.T) {
	key := "TEST_LEVEL_VAR"

	os.Setenv(key, "WARN")
	assert.Equal(t, slog.LevelWarn, getEnvLevel(key, slog.LevelInfo))

	os.Setenv(key, "loud")
	assert.Equal(t, slog.LevelInfo, getEnvLevel(key, slog.LevelInfo))

	os.Unsetenv(key)
	assert.Equal(t, slog.LevelError, getEnvLevel(key, slog.LevelError))
}
