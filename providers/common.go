// Package providers содержит HTTP-клиенты внешних AI-сервисов:
// chat-completion для извлечения локаций и embeddings для
// семантического сопоставления. Оба работают с OpenAI-совместимыми API
package providers

import (
	"fmt"
	"net/http"
	"time"
)

// RetryConfig конфигурация повторных попыток
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig возвращает конфигурацию повторных попыток по умолчанию
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// newHTTPClient HTTP-клиент с connection pooling для AI-провайдеров
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
		DisableCompression:  false,
		MaxIdleConnsPerHost: 5,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// parseRetryAfter парсит заголовок Retry-After из ответа
func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := time.ParseDuration(fmt.Sprintf("%ss", retryAfter)); err == nil {
		return seconds
	}
	return 0
}
