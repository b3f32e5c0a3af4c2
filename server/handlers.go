package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pharmafinder/server/middleware"
)

// matchRequest тело запроса сопоставления
type matchRequest struct {
	Query string `json:"query"`
}

// handleMatch прогоняет запрос через каскад и возвращает MatchResult
// Отсутствие уверенного совпадения это нормальный ответ 200, не ошибка
func (s *Server) handleMatch(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   true,
			"message": "invalid request body: " + err.Error(),
		})
		return
	}

	result := s.matcher.Match(c.Request.Context(), req.Query)

	reqID := middleware.GetRequestIDFromGin(c)
	if result.Matched() {
		log.Printf("[%s] Match %q -> %q (method=%s, confidence=%.2f)",
			reqID, req.Query, result.MatchedCommune, result.Method, result.Confidence)
	} else {
		log.Printf("[%s] No match for %q, %d suggestions", reqID, req.Query, len(result.Suggestions))
	}

	c.JSON(http.StatusOK, result)
}

// handleSuggestions возвращает подсказки без попытки уверенного совпадения
func (s *Server) handleSuggestions(c *gin.Context) {
	query := c.Query("q")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   true,
				"message": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	suggestions := s.matcher.Suggestions(c.Request.Context(), query, limit)
	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"suggestions": suggestions,
	})
}

// handleReload перечитывает справочник комун из базы и атомарно
// подменяет поколение индексов. Запросы в полете не затрагиваются
func (s *Server) handleReload(c *gin.Context) {
	ctx := c.Request.Context()

	records, err := s.db.LoadRecords(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   true,
			"message": "failed to load commune records: " + err.Error(),
		})
		return
	}

	start := time.Now()
	if err := s.matcher.Reload(ctx, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   true,
			"message": "failed to rebuild generation: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "reloaded",
		"communes": s.matcher.Generation().Gazetteer().Len(),
		"took":     time.Since(start).String(),
	})
}

// handleHealth состояние сервиса: размер справочника, время построения
// поколения и счетчики запросов по методам
func (s *Server) handleHealth(c *gin.Context) {
	gen := s.matcher.Generation()
	c.JSON(http.StatusOK, gin.H{
		"status":              "ok",
		"communes":            gen.Gazetteer().Len(),
		"generation_built_at": gen.BuiltAt().UTC().Format(time.RFC3339),
		"stats":               s.matcher.Stats(),
		"embeddings_enabled":  s.config.EmbeddingsEnabled,
		"llm_enabled":         s.config.LLMEnabled,
	})
}
