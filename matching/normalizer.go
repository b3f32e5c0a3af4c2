package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizedQuery исходный запрос вместе с его нормализованной формой
// Создается на каждый вызов и не изменяется после конструирования
type NormalizedQuery struct {
	Original   string
	Normalized string
}

// removeDiacritics разложение NFD с удалением комбинирующих знаков (Mn)
// и обратной сборкой в NFC: "Quilpué" -> "Quilpue", "Ñuñoa" -> "Nunoa"
var removeDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize нормализует текст для сравнения: удаляет диакритику, приводит
// к нижнему регистру, убирает пунктуацию и схлопывает пробелы.
// Чистая тотальная функция: пустой вход дает пустую нормализованную форму,
// которую последующие стадии трактуют как "совпадение невозможно"
func Normalize(text string) NormalizedQuery {
	folded, _, err := transform.String(removeDiacritics, text)
	if err != nil {
		// transform.String ошибается только на некорректном UTF-8,
		// в этом случае работаем с исходной строкой как есть
		folded = text
	}

	var builder strings.Builder
	builder.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(r)
		case unicode.IsSpace(r):
			builder.WriteRune(' ')
		}
		// Пунктуация отбрасывается
	}

	normalized := strings.Join(strings.Fields(builder.String()), " ")

	return NormalizedQuery{
		Original:   text,
		Normalized: normalized,
	}
}
