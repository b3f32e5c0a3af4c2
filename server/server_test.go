package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmafinder/database"
	"pharmafinder/internal/config"
	"pharmafinder/matching"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                 "8080",
		DatabasePath:         ":memory:",
		MaxOpenConns:         1,
		MaxIdleConns:         1,
		ConnMaxLifetime:      time.Hour,
		EmbeddingThreshold:   0.85,
		FuzzyThreshold:       0.9,
		TrigramThreshold:     0.6,
		SuggestionThreshold:  0.3,
		ExtractionConfidence: 0.5,
		SuggestionLimit:      5,
		ProviderTimeout:      5 * time.Second,
	}
}

func serverRecords() []matching.CommuneRecord {
	return []matching.CommuneRecord{
		{CanonicalName: "Quilpué", Region: "Valparaíso", Aliases: []string{"El Belloto"}, PharmacyCount: 12},
		{CanonicalName: "Viña del Mar", Region: "Valparaíso", PharmacyCount: 40},
		{CanonicalName: "Santiago", Region: "Metropolitana", PharmacyCount: 120},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	// :memory: с одним соединением, иначе пул открывает отдельные базы
	db, err := database.NewCommuneDB(":memory:", database.DBConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gen, err := matching.BuildGeneration(context.Background(), serverRecords(), nil)
	require.NoError(t, err)

	matcher := matching.NewMatcher(gen, matching.Options{})
	return NewServer(matcher, db, testConfig())
}

func performRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := performRequest(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(3), resp["communes"])
	assert.NotEmpty(t, resp["generation_built_at"])
	assert.Contains(t, resp, "stats")
}

func TestMatchEndpoint_Exact(t *testing.T) {
	s := newTestServer(t)

	w := performRequest(t, s, http.MethodPost, "/api/match", matchRequest{Query: "quilpue"})
	require.Equal(t, http.StatusOK, w.Code)

	var result matching.MatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Quilpué", result.MatchedCommune)
	assert.Equal(t, matching.MethodExact, result.Method)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "quilpue", result.NormalizedQuery)
}

func TestMatchEndpoint_NoMatch(t *testing.T) {
	s := newTestServer(t)

	w := performRequest(t, s, http.MethodPost, "/api/match", matchRequest{Query: "xyz123"})
	require.Equal(t, http.StatusOK, w.Code)

	var result matching.MatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Empty(t, result.MatchedCommune)
	assert.Equal(t, matching.MethodNone, result.Method)
}

func TestMatchEndpoint_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/match", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestionsEndpoint_ColdStart(t *testing.T) {
	s := newTestServer(t)

	w := performRequest(t, s, http.MethodGet, "/api/suggestions?q=&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Query       string   `json:"query"`
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Santiago", "Viña del Mar"}, resp.Suggestions)
}

func TestSuggestionsEndpoint_BadLimit(t *testing.T) {
	s := newTestServer(t)

	w := performRequest(t, s, http.MethodGet, "/api/suggestions?q=quil&limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReloadEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Новый справочник попадает в реестр, перезагрузка подхватывает его
	updated := append(serverRecords(), matching.CommuneRecord{
		CanonicalName: "Temuco",
		Region:        "Araucanía",
		PharmacyCount: 9,
	})
	require.NoError(t, s.db.SaveRegistry(context.Background(), updated))

	w := performRequest(t, s, http.MethodPost, "/api/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "reloaded", resp["status"])
	assert.Equal(t, float64(4), resp["communes"])

	w = performRequest(t, s, http.MethodPost, "/api/match", matchRequest{Query: "temuco"})
	require.Equal(t, http.StatusOK, w.Code)

	var result matching.MatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Temuco", result.MatchedCommune)
	assert.Equal(t, matching.MethodExact, result.Method)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	w := performRequest(t, s, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	w := performRequest(t, s, http.MethodOptions, "/api/match", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
