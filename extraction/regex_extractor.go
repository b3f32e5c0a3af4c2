// Package extraction извлекает упоминания локаций из запросов
// на естественном языке: через LLM и через детерминированный
// запасной вариант на стоп-словах
package extraction

import (
	"context"
	"strings"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pharmafinder/matching"
)

// Стоп-слова, не несущие информации о локации. Артикли la/las/el/los
// сознательно сохраняются: они часть названий комун ("La Florida")
var stopWords = map[string]bool{
	"en": true, "de": true, "del": true, "para": true, "por": true,
	"con": true, "sin": true, "cerca": true, "a": true, "al": true,
	"donde": true, "hay": true, "una": true, "un": true, "alguna": true,
	"algun": true, "que": true, "me": true, "mi": true, "hola": true,
	"abierta": true, "abierto": true, "turno": true, "ahora": true,
	"y": true, "o": true, "se": true, "esta": true, "estan": true,
}

// Основы глаголов поиска и предметных слов, отбрасываются после
// стемминга: busco/buscar/buscando сводятся к одной основе
var stopStems = map[string]bool{
	"busc":       true, // buscar
	"necesit":    true, // necesitar
	"encontr":    true, // encontrar
	"quier":      true, // querer
	"farmaci":    true, // farmacia
	"medicament": true,
	"remedi":     true,
}

// RegexExtractor детерминированный извлекатель локаций без внешних
// зависимостей. Никогда не возвращает ошибку: если после фильтрации
// ничего не осталось, локация пустая
type RegexExtractor struct {
	titleCaser cases.Caser
}

// NewRegexExtractor создает запасной извлекатель
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{
		titleCaser: cases.Title(language.Spanish),
	}
}

// Extract отбрасывает стоп-слова и глаголы поиска, оставшаяся фраза
// возвращается с заглавными буквами как кандидат локации
func (e *RegexExtractor) Extract(ctx context.Context, query string, knownCommunes []string) (*matching.LocationIntent, error) {
	normalized := matching.Normalize(query).Normalized

	var kept []string
	for _, word := range strings.Fields(normalized) {
		if stopWords[word] {
			continue
		}
		if stopStems[stemSpanish(word)] {
			continue
		}
		kept = append(kept, word)
	}

	location := ""
	confidence := 0.0
	if len(kept) > 0 {
		location = e.titleCaser.String(strings.Join(kept, " "))
		confidence = 0.6
	}

	return &matching.LocationIntent{
		OriginalQuery:     query,
		ExtractedLocation: location,
		IntentType:        classifyIntent(normalized),
		Confidence:        confidence,
		Reasoning:         "deterministic stop-word extraction",
	}, nil
}

// stemSpanish основа слова по алгоритму Snowball для испанского
// При ошибке стеммера слово возвращается как есть
func stemSpanish(word string) string {
	stem, err := snowball.Stem(word, "spanish", true)
	if err != nil {
		return word
	}
	return stem
}

// classifyIntent грубая классификация намерения по маркерам в запросе
func classifyIntent(normalized string) matching.IntentType {
	for _, word := range strings.Fields(normalized) {
		if stemSpanish(word) == "farmaci" {
			return matching.IntentPharmacySearch
		}
	}
	if strings.Contains(normalized, "donde") || strings.Contains(normalized, "cerca") {
		return matching.IntentLocationQuery
	}
	return matching.IntentGeneral
}
