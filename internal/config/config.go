// Package config конфигурация сервиса из переменных окружения
package config

import (
	"os"
	"strconv"
	"time"
)

// Config конфигурация сервиса сопоставления комун
type Config struct {
	// Сервер
	Port string `json:"port"`

	// База аптек со справочником комун
	DatabasePath string `json:"database_path"`

	// Connection pooling
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Пороги каскада. Калибровочного датасета нет, значения по умолчанию
	// перенесены из прежней системы и переопределяются окружением
	EmbeddingThreshold   float64 `json:"embedding_threshold"`
	FuzzyThreshold       float64 `json:"fuzzy_threshold"`
	TrigramThreshold     float64 `json:"trigram_threshold"`
	SuggestionThreshold  float64 `json:"suggestion_threshold"`
	ExtractionConfidence float64 `json:"extraction_confidence"`
	SuggestionLimit      int     `json:"suggestion_limit"`

	// Внешние AI-провайдеры
	ProviderTimeout time.Duration `json:"provider_timeout"`

	LLMEnabled        bool    `json:"llm_enabled"`
	LLMBaseURL        string  `json:"llm_base_url"`
	LLMAPIKey         string  `json:"-"`
	LLMModel          string  `json:"llm_model"`
	LLMRequestsPerSec float64 `json:"llm_requests_per_sec"`

	EmbeddingsEnabled        bool    `json:"embeddings_enabled"`
	EmbeddingsBaseURL        string  `json:"embeddings_base_url"`
	EmbeddingsAPIKey         string  `json:"-"`
	EmbeddingsModel          string  `json:"embeddings_model"`
	EmbeddingsRequestsPerSec float64 `json:"embeddings_requests_per_sec"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		Port: getEnv("SERVER_PORT", "8080"),

		DatabasePath: getEnv("DATABASE_PATH", "pharmacies.db"),

		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),

		EmbeddingThreshold:   getEnvFloat("MATCH_EMBEDDING_THRESHOLD", 0.85),
		FuzzyThreshold:       getEnvFloat("MATCH_FUZZY_THRESHOLD", 0.9),
		TrigramThreshold:     getEnvFloat("MATCH_TRIGRAM_THRESHOLD", 0.6),
		SuggestionThreshold:  getEnvFloat("MATCH_SUGGESTION_THRESHOLD", 0.3),
		ExtractionConfidence: getEnvFloat("MATCH_EXTRACTION_CONFIDENCE", 0.5),
		SuggestionLimit:      getEnvInt("MATCH_SUGGESTION_LIMIT", 5),

		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 5*time.Second),

		LLMEnabled:        getEnv("LLM_ENABLED", "false") == "true",
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMRequestsPerSec: getEnvFloat("LLM_REQUESTS_PER_SEC", 2),

		EmbeddingsEnabled:        getEnv("EMBEDDINGS_ENABLED", "false") == "true",
		EmbeddingsBaseURL:        getEnv("EMBEDDINGS_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingsAPIKey:         os.Getenv("EMBEDDINGS_API_KEY"),
		EmbeddingsModel:          getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
		EmbeddingsRequestsPerSec: getEnvFloat("EMBEDDINGS_REQUESTS_PER_SEC", 5),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
