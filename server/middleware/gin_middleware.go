// Package middleware gin-миддлвары сервиса: request ID, CORS,
// сжатие, логирование и восстановление после паник
package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GinRequestIDMiddleware добавляет уникальный request ID к каждому запросу
func GinRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Set("request_id", reqID)
		c.Request = c.Request.WithContext(SetRequestID(c.Request.Context(), reqID))
		c.Header("X-Request-ID", reqID)

		c.Next()
	}
}

// GetRequestIDFromGin извлекает request ID из Gin context
func GetRequestIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	reqID, exists := c.Get("request_id")
	if !exists {
		return ""
	}
	if id, ok := reqID.(string); ok {
		return id
	}
	return ""
}

// GinCORSMiddleware добавляет CORS заголовки
func GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// GinGzipMiddleware включает сжатие ответов
func GinGzipMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}

// GinLoggerMiddleware логирует запросы с request ID и длительностью
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		logLine := ""
		if reqID := GetRequestIDFromGin(c); reqID != "" {
			logLine = " [RequestID: " + reqID + "]"
		}
		if err := c.Errors.Last(); err != nil {
			logLine += " [Error: " + err.Error() + "]"
		}
		log.Printf("[GIN] %s %s %d %v %s%s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP(), logLine)
	}
}

// GinRecoveryMiddleware обрабатывает паники
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[GIN] Panic recovered: %v [RequestID: %s]\n%s",
					err, GetRequestIDFromGin(c), debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   true,
					"message": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
