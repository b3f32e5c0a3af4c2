package matching

import (
	"context"
	"fmt"

	"pharmafinder/matching/algorithms"
)

// EmbeddingProvider источник векторных представлений текста
// Реализация живет в пакете providers, интерфейс объявлен здесь,
// чтобы каскад не зависел от транспорта
type EmbeddingProvider interface {
	// Embed возвращает вектор для каждого входного текста, в том же порядке
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// embeddingEntry предвычисленный вектор одного алиаса
type embeddingEntry struct {
	canonical string
	vector    []float64
}

// EmbeddingMatcher семантическое сопоставление через косинусную близость
// векторов. Векторы алиасов вычисляются один раз при построении поколения,
// запрос платит за один вызов провайдера
type EmbeddingMatcher struct {
	provider EmbeddingProvider
	entries  []embeddingEntry
}

// BuildEmbeddingMatcher вычисляет векторы всех алиасов газетира
// Возвращает SignalUnavailableError, если провайдер не задан или отказал:
// вызывающий решает, продолжать ли без семантического сигнала
func BuildEmbeddingMatcher(ctx context.Context, g *Gazetteer, provider EmbeddingProvider) (*EmbeddingMatcher, error) {
	if provider == nil {
		return nil, &SignalUnavailableError{Signal: "embedding", Err: nil}
	}

	aliases := g.Aliases()
	texts := make([]string, len(aliases))
	for i, alias := range aliases {
		texts[i] = alias.Normalized
	}

	vectors, err := provider.Embed(ctx, texts)
	if err != nil {
		return nil, &SignalUnavailableError{Signal: "embedding", Err: err}
	}
	if len(vectors) != len(texts) {
		return nil, &SignalUnavailableError{
			Signal: "embedding",
			Err:    fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(texts)),
		}
	}

	matcher := &EmbeddingMatcher{
		provider: provider,
		entries:  make([]embeddingEntry, 0, len(aliases)),
	}
	for i, alias := range aliases {
		if len(vectors[i]) == 0 {
			continue
		}
		matcher.entries = append(matcher.entries, embeddingEntry{
			canonical: alias.Canonical,
			vector:    vectors[i],
		})
	}
	return matcher, nil
}

// Lookup возвращает кандидатов с косинусной близостью не ниже minScore
// Ошибка провайдера оборачивается в SignalUnavailableError, каскад ее глотает
func (em *EmbeddingMatcher) Lookup(ctx context.Context, normalized string, minScore float64) ([]Candidate, error) {
	if normalized == "" {
		return nil, nil
	}

	vectors, err := em.provider.Embed(ctx, []string{normalized})
	if err != nil {
		return nil, &SignalUnavailableError{Signal: "embedding", Err: err}
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, &SignalUnavailableError{
			Signal: "embedding",
			Err:    fmt.Errorf("provider returned no vector for query"),
		}
	}
	queryVector := vectors[0]

	best := make(map[string]float64)
	for _, entry := range em.entries {
		score := algorithms.CosineSimilarity(queryVector, entry.vector)
		if score < minScore {
			continue
		}
		if score > best[entry.canonical] {
			best[entry.canonical] = score
		}
	}

	candidates := make([]Candidate, 0, len(best))
	for commune, score := range best {
		candidates = append(candidates, Candidate{Commune: commune, Score: score})
	}
	sortCandidates(candidates)
	return candidates, nil
}
