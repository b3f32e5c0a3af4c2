// Package server HTTP-поверхность сервиса сопоставления комун
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmafinder/database"
	"pharmafinder/internal/config"
	"pharmafinder/matching"
	"pharmafinder/server/middleware"
)

// Server HTTP-сервер поверх каскада сопоставления
type Server struct {
	router  *gin.Engine
	matcher *matching.Matcher
	db      *database.CommuneDB
	config  *config.Config
	httpSrv *http.Server
}

// NewServer создает сервер с настроенными миддлварами и маршрутами
func NewServer(matcher *matching.Matcher, db *database.CommuneDB, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinLoggerMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())

	s := &Server{
		router:  router,
		matcher: matcher,
		db:      db,
		config:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/match", s.handleMatch)
		api.GET("/suggestions", s.handleSuggestions)
		api.POST("/reload", s.handleReload)
	}
}

// Router отдает маршрутизатор, используется в тестах
func (s *Server) Router() http.Handler {
	return s.router
}

// Start запускает сервер и блокируется до ошибки ListenAndServe
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("[Server] Сервер слушает порт %s", s.config.Port)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown корректно останавливает сервер, дорабатывая запросы в полете
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
