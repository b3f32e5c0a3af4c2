package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"pharmafinder/database"
	"pharmafinder/matching"
)

// TestQuery одна тестовая пара запрос-ожидание
type TestQuery struct {
	Query    string `json:"query"`
	Expected string `json:"expected"`
	Kind     string `json:"kind"`
}

// TestQuerySet набор тестовых запросов
type TestQuerySet struct {
	Count   int         `json:"count"`
	Queries []TestQuery `json:"queries"`
}

// communeSeed реальные комуны для генерации корпуса
var communeSeed = []matching.CommuneRecord{
	{CanonicalName: "Santiago", Region: "Metropolitana"},
	{CanonicalName: "Viña del Mar", Region: "Valparaíso", Aliases: []string{"Vina"}},
	{CanonicalName: "Quilpué", Region: "Valparaíso", Aliases: []string{"El Belloto"}},
	{CanonicalName: "Ñuñoa", Region: "Metropolitana"},
	{CanonicalName: "La Florida", Region: "Metropolitana"},
	{CanonicalName: "Las Condes", Region: "Metropolitana"},
	{CanonicalName: "Puerto Montt", Region: "Los Lagos"},
	{CanonicalName: "Temuco", Region: "Araucanía"},
	{CanonicalName: "Valparaíso", Region: "Valparaíso", Aliases: []string{"Valpo"}},
	{CanonicalName: "Concepción", Region: "Biobío", Aliases: []string{"Conce"}},
	{CanonicalName: "Antofagasta", Region: "Antofagasta"},
	{CanonicalName: "San José de Maipo", Region: "Metropolitana"},
	{CanonicalName: "Rancagua", Region: "O'Higgins"},
	{CanonicalName: "Iquique", Region: "Tarapacá"},
	{CanonicalName: "Punta Arenas", Region: "Magallanes"},
}

var sentenceTemplates = []string{
	"donde hay farmacias en %s",
	"busco una farmacia en %s",
	"necesito medicamentos en %s",
	"farmacia de turno en %s",
	"hay alguna farmacia abierta en %s ahora",
	"quiero encontrar farmacias cerca de %s",
}

func main() {
	gofakeit.Seed(0)

	var queries []TestQuery

	for _, rec := range communeSeed {
		name := rec.CanonicalName

		// Точное имя и вариации регистра
		queries = append(queries,
			TestQuery{Query: name, Expected: name, Kind: "exact"},
			TestQuery{Query: strings.ToUpper(name), Expected: name, Kind: "exact"},
			TestQuery{Query: strings.ToLower(name), Expected: name, Kind: "exact"},
		)

		// Алиасы
		for _, alias := range rec.Aliases {
			queries = append(queries, TestQuery{Query: alias, Expected: name, Kind: "alias"})
		}

		// Опечатки
		for i := 0; i < 3; i++ {
			queries = append(queries, TestQuery{
				Query:    mutate(strings.ToLower(name)),
				Expected: name,
				Kind:     "typo",
			})
		}

		// Запросы на естественном языке
		template := gofakeit.RandomString(sentenceTemplates)
		queries = append(queries, TestQuery{
			Query:    fmt.Sprintf(template, strings.ToLower(name)),
			Expected: name,
			Kind:     "sentence",
		})
	}

	// Мусорные запросы без ожидаемого совпадения
	for i := 0; i < 20; i++ {
		queries = append(queries, TestQuery{
			Query:    gofakeit.LetterN(uint(gofakeit.Number(4, 12))),
			Expected: "",
			Kind:     "noise",
		})
	}

	dataDir := filepath.Join("testdata", "queries")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	set := TestQuerySet{Count: len(queries), Queries: queries}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal query set: %v", err)
	}

	filename := filepath.Join(dataDir, "test_queries.json")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		log.Fatalf("Failed to write file %s: %v", filename, err)
	}
	fmt.Printf("Generated %d queries in %s\n", len(queries), filename)

	// Также создаем SQLite БД с реестром комун для локального запуска
	fmt.Println("\nGenerating SQLite database...")
	generateSQLiteDB(dataDir)
}

// mutate вносит одну случайную опечатку: пропуск, замена или перестановка
func mutate(name string) string {
	runes := []rune(name)
	if len(runes) < 3 {
		return name
	}
	pos := gofakeit.Number(1, len(runes)-2)

	switch gofakeit.Number(0, 2) {
	case 0: // пропуск буквы
		return string(runes[:pos]) + string(runes[pos+1:])
	case 1: // замена буквы
		runes[pos] = rune(gofakeit.Letter()[0])
		return string(runes)
	default: // перестановка соседних букв
		runes[pos], runes[pos+1] = runes[pos+1], runes[pos]
		return string(runes)
	}
}

// generateSQLiteDB создает БД с реестром комун и случайными счетчиками аптек
func generateSQLiteDB(dataDir string) {
	dbPath := filepath.Join(dataDir, "test_communes.db")
	os.Remove(dbPath)

	db, err := database.NewCommuneDB(dbPath, database.DefaultDBConfig())
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	records := make([]matching.CommuneRecord, len(communeSeed))
	copy(records, communeSeed)
	for i := range records {
		records[i].PharmacyCount = gofakeit.Number(1, 150)
	}

	if err := db.SaveRegistry(context.Background(), records); err != nil {
		log.Fatalf("Failed to save commune registry: %v", err)
	}

	fmt.Printf("Generated registry with %d communes in %s\n", len(records), dbPath)
}
