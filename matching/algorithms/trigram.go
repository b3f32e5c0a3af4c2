package algorithms

// TrigramGenerator генерирует символьные триграммы (шинглы) из текста
// Текст дополняется двумя пробелами с каждой стороны, чтобы начало и конец
// слова тоже давали различающие триграммы ("  la florida  ")
type TrigramGenerator struct{}

// NewTrigramGenerator создает новый генератор триграмм
func NewTrigramGenerator() *TrigramGenerator {
	return &TrigramGenerator{}
}

// Generate создает множество триграмм из нормализованного текста
// Пустой текст дает пустое множество
func (tg *TrigramGenerator) Generate(text string) map[string]bool {
	trigrams := make(map[string]bool)
	if text == "" {
		return trigrams
	}

	runes := []rune("  " + text + "  ")
	for i := 0; i+3 <= len(runes); i++ {
		trigrams[string(runes[i:i+3])] = true
	}

	return trigrams
}

// Jaccard вычисляет индекс Жаккара для двух множеств триграмм
// Индекс Жаккара = |A ∩ B| / |A ∪ B|, значение от 0.0 до 1.0
func (tg *TrigramGenerator) Jaccard(set1, set2 map[string]bool) float64 {
	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for elem := range set1 {
		if set2[elem] {
			intersection++
		}
	}

	union := len(set1)
	for elem := range set2 {
		if !set1[elem] {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// Similarity вычисляет схожесть двух текстов на основе триграмм
func (tg *TrigramGenerator) Similarity(text1, text2 string) float64 {
	return tg.Jaccard(tg.Generate(text1), tg.Generate(text2))
}
