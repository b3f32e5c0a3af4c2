package algorithms

import "math"

// CosineSimilarity вычисляет косинусную близость между двумя векторами
// эмбеддингов. Возвращает значение от 0.0 до 1.0 (отрицательные значения
// обрезаются, так как для ранжирования кандидатов они эквивалентны нулю)
func CosineSimilarity(vec1, vec2 []float64) float64 {
	if len(vec1) == 0 || len(vec2) == 0 || len(vec1) != len(vec2) {
		return 0.0
	}

	dotProduct := 0.0
	norm1 := 0.0
	norm2 := 0.0

	for i := range vec1 {
		dotProduct += vec1[i] * vec2[i]
		norm1 += vec1[i] * vec1[i]
		norm2 += vec2[i] * vec2[i]
	}

	norm1 = math.Sqrt(norm1)
	norm2 = math.Sqrt(norm2)

	if norm1 == 0 || norm2 == 0 {
		return 0.0
	}

	similarity := dotProduct / (norm1 * norm2)
	if similarity < 0 {
		similarity = 0.0
	}

	return similarity
}
