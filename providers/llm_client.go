package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// LLMClient клиент OpenAI-совместимого chat-completion API
// Потокобезопасен, разделяется между запросами
type LLMClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	limiter     *rate.Limiter
	retryConfig RetryConfig
}

// chatMessage сообщение в формате chat-completion API
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewLLMClient создает chat-клиент. rps ограничивает частоту исходящих
// запросов, чтобы не упираться в лимиты провайдера
func NewLLMClient(baseURL, apiKey, model string, rps float64) *LLMClient {
	if rps <= 0 {
		rps = 2
	}
	return &LLMClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.1,
		maxTokens:   200,
		httpClient:  newHTTPClient(30 * time.Second),
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		retryConfig: DefaultRetryConfig(),
	}
}

// Complete выполняет chat-completion запрос с повторными попытками
// и экспоненциальной задержкой. HTTP 429 уважает заголовок Retry-After
func (c *LLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	requestID := uuid.New().String()[:8]

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)

	var lastErr error
	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[%s] Retry attempt %d/%d for chat completion after %v",
				requestID, attempt, c.retryConfig.MaxRetries, delay)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.retryConfig.BackoffMultiplier)
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Printf("[%s] Chat completion failed (attempt %d/%d): %v",
				requestID, attempt+1, c.retryConfig.MaxRetries+1, lastErr)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if retryAfter := parseRetryAfter(resp); retryAfter > 0 {
				delay = retryAfter
			}
			lastErr = fmt.Errorf("rate limit exceeded (429): %s", string(body))
			log.Printf("[%s] Rate limit exceeded (attempt %d/%d), retry after %v",
				requestID, attempt+1, c.retryConfig.MaxRetries+1, delay)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
			if resp.StatusCode >= 500 {
				log.Printf("[%s] Server error %d (attempt %d/%d), will retry",
					requestID, resp.StatusCode, attempt+1, c.retryConfig.MaxRetries+1)
				continue
			}
			return "", lastErr
		}

		var response struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
			Error *struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error,omitempty"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			log.Printf("[%s] Failed to decode chat response (attempt %d/%d): %v",
				requestID, attempt+1, c.retryConfig.MaxRetries+1, lastErr)
			continue
		}
		if response.Error != nil {
			return "", fmt.Errorf("API error: %s (type: %s)", response.Error.Message, response.Error.Type)
		}
		if len(response.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}

		return response.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}
