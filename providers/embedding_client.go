package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// EmbeddingClient клиент OpenAI-совместимого embeddings API
// Вектор детерминирован для одинакового входа, клиент потокобезопасен
type EmbeddingClient struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	retryConfig RetryConfig
}

// NewEmbeddingClient создает embeddings-клиент
func NewEmbeddingClient(baseURL, apiKey, model string, rps float64) *EmbeddingClient {
	if rps <= 0 {
		rps = 5
	}
	return &EmbeddingClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		httpClient:  newHTTPClient(60 * time.Second),
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		retryConfig: DefaultRetryConfig(),
	}
}

// Embed возвращает вектор для каждого текста в порядке входа
// Провайдер может переставить элементы, порядок восстанавливается по index
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requestID := uuid.New().String()[:8]

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	requestBody := map[string]interface{}{
		"model": c.model,
		"input": texts,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/embeddings", c.baseURL)

	var lastErr error
	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[%s] Retry attempt %d/%d for embeddings after %v",
				requestID, attempt, c.retryConfig.MaxRetries, delay)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.retryConfig.BackoffMultiplier)
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Printf("[%s] Embeddings request failed (attempt %d/%d): %v",
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
			return nil, lastErr
		}

		var response struct {
			Data []struct {
				Index     int       `json:"index"`
				Embedding []float64 `json:"embedding"`
			} `json:"data"`
			Error *struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error,omitempty"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			log.Printf("[%s] Failed to decode embeddings response (attempt %d/%d): %v",
				requestID, attempt+1, c.retryConfig.MaxRetries+1, lastErr)
			continue
		}
		if response.Error != nil {
			return nil, fmt.Errorf("API error: %s (type: %s)", response.Error.Message, response.Error.Type)
		}
		if len(response.Data) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(response.Data))
		}

		sort.Slice(response.Data, func(i, j int) bool {
			return response.Data[i].Index < response.Data[j].Index
		})
		vectors := make([][]float64, len(texts))
		for i, item := range response.Data {
			vectors[i] = item.Embedding
		}
		return vectors, nil
	}

	return nil, fmt.Errorf("all retry attempts failed: %w", lastErr)
}
