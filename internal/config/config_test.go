package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutriscan/internal/logger"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY",
	"OPENAI_MODEL", "OPENAI_BASE_URL", "VERTEX_PROJECT_ID", "VERTEX_LOCATION", "VERTEX_CREDENTIALS_FILE",
	"VERTEX_MODEL", "ANALYSIS_TIMEOUT", "PROGRESS_INTERVAL", "STORAGE_BACKEND", "SQLITE_PATH",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "DB_HOST", "DB_PORT", "DB_USER",
	"DB_PASSWORD", "DB_NAME", "HTTP_ADDR", "CAMERA_REAR_PATH", "CAMERA_FRONT_PATH",
	"LOG_LEVEL", "LOG_OUTPUT", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 150*time.Millisecond, cfg.ProgressInterval)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, logger.LevelInfo, cfg.Logger.Level)
	assert.Contains(t, cfg.DB.DSN(), "dbname=nutriscan")
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("ANALYSIS_TIMEOUT", "5s")
	t.Setenv("PROGRESS_INTERVAL", "50ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.OpenAIBaseURL)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.ProgressInterval)
	assert.Equal(t, logger.LevelDebug, cfg.Logger.Level)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing gemini key", map[string]string{"GEMINI_API_KEY": ""}, "GEMINI_API_KEY"},
		{"missing vertex project", map[string]string{"AI_PROVIDER": "vertex"}, "VERTEX_PROJECT_ID"},
		{"unknown provider", map[string]string{"AI_PROVIDER": "llama"}, "unknown AI_PROVIDER"},
		{"unknown backend", map[string]string{"GEMINI_API_KEY": "k", "STORAGE_BACKEND": "mongo"}, "unknown STORAGE_BACKEND"},
		{"bad duration", map[string]string{"GEMINI_API_KEY": "k", "ANALYSIS_TIMEOUT": "soon"}, "ANALYSIS_TIMEOUT"},
		{"zero interval", map[string]string{"GEMINI_API_KEY": "k", "PROGRESS_INTERVAL": "0s"}, "PROGRESS_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireTelegram())
	cfg.TelegramToken = "123:abc"
	assert.NoError(t, cfg.RequireTelegram())
}
