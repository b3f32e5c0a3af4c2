package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate проверяет конфигурацию, собирая все ошибки разом
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}

	// Валидация connection pooling
	if c.MaxOpenConns < 1 {
		errors = append(errors, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 1 {
		errors = append(errors, "max idle connections must be at least 1")
	}

	// Валидация порогов каскада
	if c.EmbeddingThreshold <= 0 || c.EmbeddingThreshold > 1 {
		errors = append(errors, fmt.Sprintf("embedding threshold must be in (0, 1], got %f", c.EmbeddingThreshold))
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		errors = append(errors, fmt.Sprintf("fuzzy threshold must be in (0, 1], got %f", c.FuzzyThreshold))
	}
	if c.TrigramThreshold <= 0 || c.TrigramThreshold > 1 {
		errors = append(errors, fmt.Sprintf("trigram threshold must be in (0, 1], got %f", c.TrigramThreshold))
	}
	if c.SuggestionThreshold <= 0 || c.SuggestionThreshold > 1 {
		errors = append(errors, fmt.Sprintf("suggestion threshold must be in (0, 1], got %f", c.SuggestionThreshold))
	}
	if c.ExtractionConfidence <= 0 || c.ExtractionConfidence > 1 {
		errors = append(errors, fmt.Sprintf("extraction confidence must be in (0, 1], got %f", c.ExtractionConfidence))
	}
	if c.SuggestionLimit < 1 {
		errors = append(errors, "suggestion limit must be at least 1")
	}
	if c.ProviderTimeout <= 0 {
		errors = append(errors, "provider timeout must be positive")
	}

	// Включенные провайдеры требуют адрес и модель, ключ может
	// отсутствовать для локальных совместимых серверов
	if c.LLMEnabled {
		if c.LLMBaseURL == "" {
			errors = append(errors, "LLM base URL is required when LLM is enabled")
		}
		if c.LLMModel == "" {
			errors = append(errors, "LLM model is required when LLM is enabled")
		}
	}
	if c.EmbeddingsEnabled {
		if c.EmbeddingsBaseURL == "" {
			errors = append(errors, "embeddings base URL is required when embeddings are enabled")
		}
		if c.EmbeddingsModel == "" {
			errors = append(errors, "embeddings model is required when embeddings are enabled")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
