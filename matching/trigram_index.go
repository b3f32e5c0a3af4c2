package matching

import (
	"sort"

	"pharmafinder/matching/algorithms"
)

// trigramEntry предвычисленный набор триграмм одного алиаса
type trigramEntry struct {
	canonical string
	trigrams  map[string]bool
}

// TrigramIndex инвертированный индекс триграмма -> алиасы газетира
// Кандидатами становятся только алиасы, разделяющие с запросом хотя бы
// одну триграмму, Жаккар считается только для них
type TrigramIndex struct {
	generator *algorithms.TrigramGenerator
	entries   []trigramEntry
	inverted  map[string][]int // триграмма -> индексы записей
}

// BuildTrigramIndex строит индекс по алиасам газетира
func BuildTrigramIndex(g *Gazetteer) *TrigramIndex {
	generator := algorithms.NewTrigramGenerator()
	aliases := g.Aliases()

	index := &TrigramIndex{
		generator: generator,
		entries:   make([]trigramEntry, 0, len(aliases)),
		inverted:  make(map[string][]int),
	}
	for _, alias := range aliases {
		trigrams := generator.Generate(alias.Normalized)
		pos := len(index.entries)
		index.entries = append(index.entries, trigramEntry{
			canonical: alias.Canonical,
			trigrams:  trigrams,
		})
		for trigram := range trigrams {
			index.inverted[trigram] = append(index.inverted[trigram], pos)
		}
	}
	return index
}

// Lookup возвращает кандидатов со сходством Жаккара не ниже minScore,
// по убыванию счета. Для комуны с несколькими алиасами берется лучший счет
func (idx *TrigramIndex) Lookup(normalized string, minScore float64) []Candidate {
	queryTrigrams := idx.generator.Generate(normalized)
	if len(queryTrigrams) == 0 {
		return nil
	}

	// Сбор кандидатов через инвертированный индекс
	seen := make(map[int]bool)
	for trigram := range queryTrigrams {
		for _, pos := range idx.inverted[trigram] {
			seen[pos] = true
		}
	}

	best := make(map[string]float64)
	for pos := range seen {
		entry := idx.entries[pos]
		score := idx.generator.Jaccard(queryTrigrams, entry.trigrams)
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
	return candidates
}

// sortCandidates сортирует по убыванию счета, при равенстве по алфавиту
// для детерминированного порядка подсказок
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Commune < candidates[j].Commune
	})
}
