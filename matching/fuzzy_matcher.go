package matching

import (
	"strings"

	"pharmafinder/matching/algorithms"
)

// FuzzyMatcher нечеткое сопоставление по расстоянию Дамерау-Левенштейна
// с бонусом за вхождение подстроки. Работает по всем алиасам газетира
type FuzzyMatcher struct {
	dl      *algorithms.DamerauLevenshtein
	aliases []AliasEntry
}

// substringBonus надбавка к счету, когда одна строка содержит другую
// ("florida" внутри "la florida" почти наверняка та же комуна)
const substringBonus = 0.2

// NewFuzzyMatcher создает нечеткий сопоставитель по алиасам газетира
func NewFuzzyMatcher(g *Gazetteer) *FuzzyMatcher {
	return &FuzzyMatcher{
		dl:      algorithms.NewDamerauLevenshtein(),
		aliases: g.Aliases(),
	}
}

// Score вычисляет счет пары строк: схожесть Дамерау-Левенштейна плюс
// бонус за подстроку, с обрезкой до 1.0
func (fm *FuzzyMatcher) Score(query, alias string) float64 {
	score := fm.dl.Similarity(query, alias)
	if query != "" && alias != "" &&
		(strings.Contains(alias, query) || strings.Contains(query, alias)) {
		score += substringBonus
	}
	return clampConfidence(score)
}

// Lookup возвращает кандидатов со счетом не ниже minScore по убыванию
// Для комуны с несколькими алиасами берется лучший счет
func (fm *FuzzyMatcher) Lookup(normalized string, minScore float64) []Candidate {
	if normalized == "" {
		return nil
	}

	best := make(map[string]float64)
	for _, alias := range fm.aliases {
		score := fm.Score(normalized, alias.Normalized)
		if score < minScore {
			continue
		}
		if score > best[alias.Canonical] {
			best[alias.Canonical] = score
		}
	}

	candidates := make([]Candidate, 0, len(best))
	for commune, score := range best {
		candidates = append(candidates, Candidate{Commune: commune, Score: score})
	}
	sortCandidates(candidates)
	return candidates
}
