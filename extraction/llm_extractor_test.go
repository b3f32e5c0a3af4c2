package extraction

import (
	"context"
	"errors"
	"testing"

	"pharmafinder/matching"
)

type stubChatClient struct {
	response string
	err      error
}

func (s *stubChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.response, s.err
}

func TestLLMExtractor_Extract(t *testing.T) {
	client := &stubChatClient{response: `{
		"extracted_location": "La Florida",
		"intent_type": "pharmacy_search",
		"confidence": 0.95,
		"reasoning": "la consulta menciona la comuna La Florida"
	}`}
	extractor := NewLLMExtractor(client)

	intent, err := extractor.Extract(context.Background(), "farmacias en la florida", []string{"Santiago", "La Florida"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if intent.ExtractedLocation != "La Florida" {
		t.Errorf("ExtractedLocation = %q, want La Florida", intent.ExtractedLocation)
	}
	if intent.IntentType != matching.IntentPharmacySearch {
		t.Errorf("IntentType = %s, want pharmacy_search", intent.IntentType)
	}
	if intent.Confidence != 0.95 {
		t.Errorf("Confidence = %f, want 0.95", intent.Confidence)
	}
	if intent.OriginalQuery != "farmacias en la florida" {
		t.Errorf("OriginalQuery = %q, want original preserved", intent.OriginalQuery)
	}
}

// Модели любят заворачивать JSON в markdown-блоки
func TestLLMExtractor_MarkdownFences(t *testing.T) {
	client := &stubChatClient{response: "```json\n{\"extracted_location\": \"Santiago\", \"intent_type\": \"location_query\", \"confidence\": 0.8, \"reasoning\": \"ok\"}\n```"}
	extractor := NewLLMExtractor(client)

	intent, err := extractor.Extract(context.Background(), "santiago centro", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if intent.ExtractedLocation != "Santiago" {
		t.Errorf("ExtractedLocation = %q, want Santiago", intent.ExtractedLocation)
	}
}

func TestLLMExtractor_InvalidResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "lo siento, no puedo ayudar"},
		{"bad intent type", `{"extracted_location": "x", "intent_type": "unknown", "confidence": 0.5}`},
		{"confidence out of range", `{"extracted_location": "x", "intent_type": "general", "confidence": 1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewLLMExtractor(&stubChatClient{response: tt.response})
			_, err := extractor.Extract(context.Background(), "query", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			var signalErr *matching.SignalUnavailableError
			if !errors.As(err, &signalErr) {
				t.Errorf("expected *SignalUnavailableError, got %T", err)
			}
		})
	}
}

func TestLLMExtractor_ClientError(t *testing.T) {
	extractor := NewLLMExtractor(&stubChatClient{err: errors.New("timeout")})
	_, err := extractor.Extract(context.Background(), "query", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	extractor = NewLLMExtractor(nil)
	if _, err := extractor.Extract(context.Background(), "query", nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}
