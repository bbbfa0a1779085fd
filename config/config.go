package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// MySQL configuration (property inventory, read-only)
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     int
	DBName     string

	// MongoDB configuration (turn log + knowledge base)
	MongoURI     string
	DatabaseName string

	// LLM configuration
	OpenAIAPIKey   string
	LLMModel       string
	LLMTemperature float64

	// Embeddings configuration
	VoyageAPIKey string
	VoyageModel  string

	// Admin API
	AdminTokenHash string

	// Cache configuration
	CacheMaxSize int
	CacheTTL     time.Duration

	// Orchestration flags
	EnableSafetyGuard       bool
	UseLLMLanguageDetection bool
	RAGChunkCount           int
	MaxHistoryMessages      int

	// Server configuration
	Port string
}

func LoadConfig() *Config {
	cfg := &Config{
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 3306),
		DBName:     getEnv("DB_NAME", "aqar"),

		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("MONGO_DB_NAME", "aqar_chatbot"),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature: 0.2,

		VoyageAPIKey: getEnv("VOYAGE_API_KEY", ""),
		VoyageModel:  getEnv("VOYAGE_MODEL", "voyage-2"),

		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),

		CacheMaxSize: getEnvInt("CACHE_MAX_SIZE", 1000),
		CacheTTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,

		EnableSafetyGuard:       getEnvBool("ENABLE_SAFETY_GUARD", true),
		UseLLMLanguageDetection: getEnvBool("USE_LLM_LANGUAGE_DETECTION", false),
		RAGChunkCount:           getEnvInt("RAG_CHUNK_COUNT", 3),
		MaxHistoryMessages:      getEnvInt("MAX_HISTORY_MESSAGES", 10),

		Port: getEnv("PORT", "8005"),
	}

	if cfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY not set, LLM calls will fail unless TEST_MODE is used")
	}

	return cfg
}

// DSN builds the MySQL connection string for the inventory database.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
