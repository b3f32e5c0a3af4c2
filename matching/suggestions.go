package matching

// DefaultSuggestionLimit количество подсказок по умолчанию
const DefaultSuggestionLimit = 5

// SuggestionRanker собирает список подсказок из кандидатов разных стратегий
type SuggestionRanker struct {
	gazetteer *Gazetteer
	limit     int
}

// NewSuggestionRanker создает ранжировщик подсказок
func NewSuggestionRanker(g *Gazetteer, limit int) *SuggestionRanker {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	return &SuggestionRanker{gazetteer: g, limit: limit}
}

// Rank сливает группы кандидатов, исключает уже совпавшую комуну,
// дедуплицирует с сохранением лучшего счета по всем стратегиям,
// сортирует по убыванию и обрезает до лимита
func (sr *SuggestionRanker) Rank(exclude string, groups ...[]Candidate) []string {
	best := make(map[string]float64)
	for _, group := range groups {
		for _, candidate := range group {
			if candidate.Commune == exclude {
				continue
			}
			if score, seen := best[candidate.Commune]; !seen || candidate.Score > score {
				best[candidate.Commune] = candidate.Score
			}
		}
	}

	merged := make([]Candidate, 0, len(best))
	for commune, score := range best {
		merged = append(merged, Candidate{Commune: commune, Score: score})
	}
	sortCandidates(merged)

	limit := sr.limit
	if len(merged) < limit {
		limit = len(merged)
	}
	suggestions := make([]string, 0, limit)
	for _, candidate := range merged[:limit] {
		suggestions = append(suggestions, candidate.Commune)
	}
	return suggestions
}

// ColdStart возвращает подсказки для пустого запроса: комуны
// с наибольшим количеством аптек
func (sr *SuggestionRanker) ColdStart() []string {
	return sr.gazetteer.TopCommunes(sr.limit)
}

// Limit настроенный лимит подсказок
func (sr *SuggestionRanker) Limit() int {
	return sr.limit
}
