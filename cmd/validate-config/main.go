package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/nutriscan/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Printf("📋 Details:\n")
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - AI Provider: %s\n", cfg.AI.Provider)
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		fmt.Printf("  - Gemini API Key: %s\n", maskToken(cfg.AI.GeminiAPIKey))
		fmt.Printf("  - Gemini Model: %s\n", cfg.AI.GeminiModel)
	case config.ProviderOpenAI:
		fmt.Printf("  - OpenAI API Key: %s\n", maskToken(cfg.AI.OpenAIAPIKey))
		fmt.Printf("  - OpenAI Model: %s\n", cfg.AI.OpenAIModel)
		if cfg.AI.OpenAIBaseURL != "" {
			fmt.Printf("  - OpenAI Base URL: %s\n", cfg.AI.OpenAIBaseURL)
		}
	case config.ProviderVertex:
		fmt.Printf("  - Vertex Project: %s\n", cfg.AI.VertexProjectID)
		fmt.Printf("  - Vertex Location: %s\n", cfg.AI.VertexLocation)
		fmt.Printf("  - Vertex Model: %s\n", cfg.AI.VertexModel)
	}
	fmt.Printf("  - Analysis Timeout: %s\n", cfg.AI.Timeout)
	fmt.Printf("  - Storage Backend: %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		fmt.Printf("  - SQLite Path: %s\n", cfg.Storage.SQLitePath)
	case config.StorageRedis:
		fmt.Printf("  - Redis Addr: %s\n", cfg.Redis.Addr())
		fmt.Printf("  - Redis Password: %s\n", maskToken(cfg.Redis.Password))
	case config.StoragePostgres:
		fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
		fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
		fmt.Printf("  - DB User: %s\n", cfg.DB.User)
		fmt.Printf("  - DB Password: %s\n", maskToken(cfg.DB.Password))
		fmt.Printf("  - DB Name: %s\n", cfg.DB.DBName)
	}
	fmt.Printf("  - HTTP Addr: %s\n", cfg.HTTPAddr)
	fmt.Printf("  - Progress Interval: %s\n", cfg.ProgressInterval)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
