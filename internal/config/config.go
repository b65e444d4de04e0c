package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutriscan/internal/logger"
)

// AI providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	TelegramToken    string
	AI               AIConfig
	Storage          StorageConfig
	DB               DBConfig
	Redis            RedisConfig
	Camera           CameraConfig
	HTTPAddr         string
	ProgressInterval time.Duration
	Logger           LoggerConfig
}

type AIConfig struct {
	Provider              string
	Timeout               time.Duration
	GeminiAPIKey          string
	GeminiModel           string
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIBaseURL         string
	VertexProjectID       string
	VertexLocation        string
	VertexCredentialsFile string
	VertexModel           string
}

type StorageConfig struct {
	Backend    string
	SQLitePath string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DSN returns the Postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// CameraConfig points at the snapshot files a webcam daemon keeps fresh.
type CameraConfig struct {
	RearPath  string
	FrontPath string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads the configuration from the environment. Only malformed
// durations are reported; call Validate or ValidateStorage afterwards.
func Read() (*Config, error) {
	timeout, err := getDurationOrDefault("ANALYSIS_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	interval, err := getDurationOrDefault("PROGRESS_INTERVAL", 150*time.Millisecond)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AI: AIConfig{
			Provider:              strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini)),
			Timeout:               timeout,
			GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
			GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
			OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:           getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:         os.Getenv("OPENAI_BASE_URL"),
			VertexProjectID:       os.Getenv("VERTEX_PROJECT_ID"),
			VertexLocation:        getEnvOrDefault("VERTEX_LOCATION", "us-central1"),
			VertexCredentialsFile: os.Getenv("VERTEX_CREDENTIALS_FILE"),
			VertexModel:           getEnvOrDefault("VERTEX_MODEL", "gemini-2.5-flash"),
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", StorageSQLite)),
			SQLitePath: getEnvOrDefault("SQLITE_PATH", "data/nutriscan.db"),
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "nutriscan"),
		},
		Redis: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Camera: CameraConfig{
			RearPath:  getEnvOrDefault("CAMERA_REAR_PATH", "camera/rear.jpg"),
			FrontPath: getEnvOrDefault("CAMERA_FRONT_PATH", "camera/front.jpg"),
		},
		HTTPAddr:         getEnvOrDefault("HTTP_ADDR", ":8080"),
		ProgressInterval: interval,
		Logger: LoggerConfig{
			Level:      logger.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "logs/app.log"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}
	return cfg, nil
}

// Validate checks provider credentials, the storage backend and durations.
// Telegram is checked separately by RequireTelegram since only the bot needs it.
func (c *Config) Validate() error {
	var errs []error

	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderVertex:
		if c.AI.VertexProjectID == "" {
			errs = append(errs, errors.New("VERTEX_PROJECT_ID is required for the vertex provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider))
	}

	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("ANALYSIS_TIMEOUT must be positive"))
	}
	if c.ProgressInterval <= 0 {
		errs = append(errs, errors.New("PROGRESS_INTERVAL must be positive"))
	}
	if err := c.ValidateStorage(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateStorage checks only the storage backend, for commands that never
// call the AI service.
func (c *Config) ValidateStorage() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageRedis, StoragePostgres:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

// RequireTelegram fails when the bot token is missing.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}
