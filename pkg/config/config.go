package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Slack
	SlackBotToken string

	// AI provider
	AIProvider    string // "gemini", "ollama" or "auto"
	GeminiAPIKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string
	AITimeout     time.Duration
	AIMaxRetries  int

	// Analysis
	AnalysisPeriodDays int
	MessageBatchSize   int
	RiskThreshold      float64
	HealthCalcHour     int
	ScoreHistoryLimit  int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	aiTimeout := 60 * time.Second
	if t := os.Getenv("AI_TIMEOUT"); t != "" {
		if parsed, err := time.ParseDuration(t); err == nil {
			aiTimeout = parsed
		}
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=healthpulse port=5432 sslmode=disable"),

		SlackBotToken: getEnv("SLACK_BOT_TOKEN", ""),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
		AITimeout:     aiTimeout,
		AIMaxRetries:  getEnvInt("AI_MAX_RETRIES", 2),

		AnalysisPeriodDays: getEnvInt("ANALYSIS_PERIOD_DAYS", 30),
		MessageBatchSize:   getEnvInt("MESSAGE_BATCH_SIZE", 50),
		RiskThreshold:      getEnvFloat("RISK_THRESHOLD", 0.5),
		HealthCalcHour:     getEnvInt("HEALTH_CALC_HOUR", 2),
		ScoreHistoryLimit:  getEnvInt("SCORE_HISTORY_LIMIT", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
