package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmafinder/database"
	"pharmafinder/extraction"
	"pharmafinder/internal/config"
	"pharmafinder/matching"
	"pharmafinder/providers"
	"pharmafinder/server"
)

func main() {
	log.Println("Запуск сервиса сопоставления комун...")

	// Загружаем конфигурацию
	log.Println("[1/6] Загрузка конфигурации...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("✗ Ошибка загрузки конфигурации: %v", err)
		log.Fatalf("Не удалось загрузить конфигурацию из переменных окружения")
	}
	log.Printf("✓ Конфигурация загружена. Порт: %s", cfg.Port)

	// Открываем базу аптек со справочником комун
	log.Println("[2/6] Инициализация базы данных...")
	db, err := database.NewCommuneDB(cfg.DatabasePath, database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		log.Printf("✗ Ошибка открытия базы данных: %v", err)
		log.Fatalf("Не удалось открыть базу данных по пути: %s", cfg.DatabasePath)
	}
	defer db.Close()
	log.Printf("✓ База данных открыта: %s", cfg.DatabasePath)

	// Загружаем справочные записи
	log.Println("[3/6] Загрузка справочника комун...")
	ctx := context.Background()
	records, err := db.LoadRecords(ctx)
	if err != nil {
		log.Printf("✗ Ошибка загрузки справочника: %v", err)
		log.Fatalf("Справочник комун недоступен, сервис не может стартовать")
	}
	log.Printf("✓ Справочник загружен: %d комун", len(records))

	// Подключаем внешние провайдеры согласно конфигурации
	log.Println("[4/6] Подключение AI-провайдеров...")
	opts := matching.Options{
		EmbeddingThreshold:   cfg.EmbeddingThreshold,
		FuzzyThreshold:       cfg.FuzzyThreshold,
		TrigramThreshold:     cfg.TrigramThreshold,
		SuggestionThreshold:  cfg.SuggestionThreshold,
		ExtractionConfidence: cfg.ExtractionConfidence,
		SuggestionLimit:      cfg.SuggestionLimit,
		ProviderTimeout:      cfg.ProviderTimeout,
	}

	if cfg.EmbeddingsEnabled {
		opts.EmbeddingProvider = providers.NewEmbeddingClient(
			cfg.EmbeddingsBaseURL, cfg.EmbeddingsAPIKey, cfg.EmbeddingsModel, cfg.EmbeddingsRequestsPerSec)
		log.Printf("✓ Эмбеддинги включены: %s", cfg.EmbeddingsModel)
	} else {
		log.Println("  Эмбеддинги выключены")
	}

	if cfg.LLMEnabled {
		client := providers.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMRequestsPerSec)
		opts.Extractor = extraction.NewLLMExtractor(client)
		opts.Fallback = extraction.NewRegexExtractor()
		log.Printf("✓ LLM-извлечение включено: %s", cfg.LLMModel)
	} else {
		// Без LLM запросы на естественном языке обрабатывает
		// детерминированный извлекатель
		opts.Extractor = extraction.NewRegexExtractor()
		log.Println("  LLM выключен, используется regex-извлечение")
	}

	// Строим индексы и каскад
	log.Println("[5/6] Построение индексов сопоставления...")
	gen, err := matching.BuildGeneration(ctx, records, opts.EmbeddingProvider)
	if err != nil {
		log.Printf("✗ Ошибка построения индексов: %v", err)
		log.Fatalf("Не удалось построить поколение индексов")
	}
	matcher := matching.NewMatcher(gen, opts)
	log.Printf("✓ Индексы построены: %d комун, %d алиасов",
		gen.Gazetteer().Len(), len(gen.Gazetteer().Aliases()))

	// Запускаем HTTP-сервер
	log.Println("[6/6] Запуск HTTP-сервера...")
	srv := server.NewServer(matcher, db, cfg)

	startErrorChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("✗ Не удалось запустить HTTP-сервер: %v", err)
			startErrorChan <- err
		}
	}()

	select {
	case err := <-startErrorChan:
		log.Printf("✗ Сервер не запустился: %v", err)
		time.Sleep(2 * time.Second)
		os.Exit(1)
	case <-time.After(2 * time.Second):
	}

	log.Printf("✓ Сервер запущен на порту %s", cfg.Port)
	log.Printf("Health check: http://localhost:%s/health", cfg.Port)
	log.Println("Для остановки нажмите Ctrl+C")

	// Ожидаем сигнал завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Получен сигнал завершения, останавливаем сервер...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
