package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pharmafinder/matching"
)

// ChatClient клиент chat-completion API. Реализация живет в пакете
// providers, здесь только контракт
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// llmResponse схема JSON-ответа модели
type llmResponse struct {
	ExtractedLocation string  `json:"extracted_location"`
	IntentType        string  `json:"intent_type"`
	Confidence        float64 `json:"confidence"`
	Reasoning         string  `json:"reasoning"`
}

const systemPrompt = "Eres un experto en análisis de texto para extraer ubicaciones en consultas sobre farmacias en Chile."

// LLMExtractor извлекает локацию через LLM с промптом, заземленным
// выборкой известных названий комун. Любой невалидный ответ модели
// возвращается как ошибка, решение о запасном варианте принимает каскад
type LLMExtractor struct {
	client ChatClient
}

// NewLLMExtractor создает LLM-извлекатель поверх chat-клиента
func NewLLMExtractor(client ChatClient) *LLMExtractor {
	return &LLMExtractor{client: client}
}

// Extract вызывает модель и валидирует структурированный ответ
func (e *LLMExtractor) Extract(ctx context.Context, query string, knownCommunes []string) (*matching.LocationIntent, error) {
	if e.client == nil {
		return nil, &matching.SignalUnavailableError{Signal: "llm"}
	}

	raw, err := e.client.Complete(ctx, systemPrompt, buildPrompt(query, knownCommunes))
	if err != nil {
		return nil, &matching.SignalUnavailableError{Signal: "llm", Err: err}
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		return nil, &matching.SignalUnavailableError{Signal: "llm", Err: err}
	}

	return &matching.LocationIntent{
		OriginalQuery:     query,
		ExtractedLocation: strings.TrimSpace(parsed.ExtractedLocation),
		IntentType:        matching.IntentType(parsed.IntentType),
		Confidence:        parsed.Confidence,
		Reasoning:         parsed.Reasoning,
	}, nil
}

// buildPrompt собирает промпт с выборкой известных комун для заземления
func buildPrompt(query string, knownCommunes []string) string {
	return fmt.Sprintf(`Eres un asistente especializado en extraer ubicaciones geográficas de consultas sobre farmacias en Chile.

TAREA: Analiza la siguiente consulta y extrae la comuna/ciudad mencionada.

CONSULTA: "%s"

COMUNAS DISPONIBLES (ejemplo): %s...

INSTRUCCIONES:
1. Identifica si la consulta menciona una ubicación específica
2. Extrae SOLO el nombre de la comuna/ciudad
3. Normaliza el nombre (ej: "la florida" -> "La Florida")
4. Si no hay ubicación clara, devuelve vacío

RESPONDE EN FORMATO JSON:
{
    "extracted_location": "nombre de la comuna extraída o vacío",
    "intent_type": "pharmacy_search|location_query|general",
    "confidence": 0.0-1.0,
    "reasoning": "breve explicación de tu decisión"
}

EJEMPLOS:
- "farmacias en la florida" -> {"extracted_location": "La Florida", "intent_type": "pharmacy_search", "confidence": 0.95}
- "necesito medicamentos en las condes" -> {"extracted_location": "Las Condes", "intent_type": "pharmacy_search", "confidence": 0.90}
- "dónde hay farmacias" -> {"extracted_location": "", "intent_type": "general", "confidence": 0.1}`,
		query, strings.Join(knownCommunes, ", "))
}

// parseResponse очищает ответ от markdown-блоков, парсит JSON
// и проверяет схему
func parseResponse(response string) (*llmResponse, error) {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w, response: %s", err, response)
	}

	if !matching.ValidIntentType(parsed.IntentType) {
		return nil, fmt.Errorf("invalid intent_type %q in LLM response", parsed.IntentType)
	}
	if parsed.Confidence < 0.0 || parsed.Confidence > 1.0 {
		return nil, fmt.Errorf("confidence %f out of range in LLM response", parsed.Confidence)
	}

	return &parsed, nil
}
