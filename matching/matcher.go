package matching

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
	"time"
)

// IntentExtractor извлекает локацию из запроса на естественном языке
// Реализации живут в пакете extraction: LLM с валидацией JSON и
// детерминированный regex-запасной вариант
type IntentExtractor interface {
	// Extract принимает исходный запрос и выборку известных названий комун
	// для заземления промпта. Возвращаемый intent может иметь любую
	// уверенность, решение о применении принимает каскад
	Extract(ctx context.Context, query string, knownCommunes []string) (*LocationIntent, error)
}

// Пороги каскада по умолчанию. Калибровочного датасета нет, поэтому
// все значения переопределяются через Options
const (
	DefaultEmbeddingThreshold   = 0.85
	DefaultFuzzyThreshold       = 0.9
	DefaultTrigramThreshold     = 0.6
	DefaultSuggestionThreshold  = 0.3
	DefaultExtractionConfidence = 0.5
	DefaultProviderTimeout      = 5 * time.Second
	DefaultExtractionSampleSize = 20
)

// Options настройки каскада сопоставления
// Нулевые значения порогов заменяются значениями по умолчанию
type Options struct {
	EmbeddingThreshold   float64       // минимальная косинусная близость для принятия
	FuzzyThreshold       float64       // минимальная схожесть для уверенного нечеткого совпадения
	TrigramThreshold     float64       // минимальный Жаккар для принятия триграммного совпадения
	SuggestionThreshold  float64       // нижняя граница счета для кандидатов в подсказки
	ExtractionConfidence float64       // минимальная уверенность LLM для замены рабочей строки
	SuggestionLimit      int           // максимум подсказок в ответе
	ProviderTimeout      time.Duration // таймаут на один вызов внешнего провайдера

	// EmbeddingProvider опциональный источник векторов, nil отключает
	// семантическую стратегию
	EmbeddingProvider EmbeddingProvider
	// Extractor опциональный LLM-извлекатель локаций, nil отключает
	// обработку запросов на естественном языке
	Extractor IntentExtractor
	// Fallback детерминированный запасной извлекатель, применяется при
	// отказе или низкой уверенности Extractor
	Fallback IntentExtractor
}

func (o Options) withDefaults() Options {
	if o.EmbeddingThreshold <= 0 {
		o.EmbeddingThreshold = DefaultEmbeddingThreshold
	}
	if o.FuzzyThreshold <= 0 {
		o.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if o.TrigramThreshold <= 0 {
		o.TrigramThreshold = DefaultTrigramThreshold
	}
	if o.SuggestionThreshold <= 0 {
		o.SuggestionThreshold = DefaultSuggestionThreshold
	}
	if o.ExtractionConfidence <= 0 {
		o.ExtractionConfidence = DefaultExtractionConfidence
	}
	if o.SuggestionLimit <= 0 {
		o.SuggestionLimit = DefaultSuggestionLimit
	}
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = DefaultProviderTimeout
	}
	return o
}

// Generation неизменяемый набор индексов одного поколения справочника
// После построения только читается, поэтому делится между горутинами
// без блокировок
type Generation struct {
	gazetteer  *Gazetteer
	trigrams   *TrigramIndex
	fuzzy      *FuzzyMatcher
	embeddings *EmbeddingMatcher // nil, если семантический сигнал недоступен
	builtAt    time.Time
}

// BuildGeneration строит поколение индексов из справочных записей
// Отказ провайдера эмбеддингов не фатален: поколение строится без
// семантической стратегии, отказ логируется
func BuildGeneration(ctx context.Context, records []CommuneRecord, provider EmbeddingProvider) (*Generation, error) {
	gazetteer, err := BuildGazetteer(records)
	if err != nil {
		return nil, err
	}

	gen := &Generation{
		gazetteer: gazetteer,
		trigrams:  BuildTrigramIndex(gazetteer),
		fuzzy:     NewFuzzyMatcher(gazetteer),
		builtAt:   time.Now(),
	}

	if provider != nil {
		embeddings, err := BuildEmbeddingMatcher(ctx, gazetteer, provider)
		if err != nil {
			log.Printf("[Cascade] эмбеддинги недоступны, поколение без семантической стратегии: %v", err)
		} else {
			gen.embeddings = embeddings
		}
	}

	return gen, nil
}

// Gazetteer газетир этого поколения
func (g *Generation) Gazetteer() *Gazetteer {
	return g.gazetteer
}

// BuiltAt время построения поколения
func (g *Generation) BuiltAt() time.Time {
	return g.builtAt
}

// Matcher каскад сопоставления запросов с каноническими комунами.
// Единственное разделяемое изменяемое состояние это указатель на активное
// поколение, он меняется атомарно при перезагрузке справочника. Запросы
// в полете дорабатывают на старом поколении
type Matcher struct {
	generation atomic.Pointer[Generation]
	opts       Options
	stats      Stats
}

// NewMatcher создает каскад над готовым поколением индексов
func NewMatcher(gen *Generation, opts Options) *Matcher {
	m := &Matcher{opts: opts.withDefaults()}
	m.generation.Store(gen)
	return m
}

// Reload строит новое поколение из свежих записей и атомарно подменяет
// активное. При ошибке построения старое поколение остается активным
func (m *Matcher) Reload(ctx context.Context, records []CommuneRecord) error {
	gen, err := BuildGeneration(ctx, records, m.opts.EmbeddingProvider)
	if err != nil {
		return err
	}
	m.generation.Store(gen)
	log.Printf("[Cascade] справочник перезагружен: %d комун, %d алиасов",
		gen.gazetteer.Len(), len(gen.gazetteer.Aliases()))
	return nil
}

// Generation активное поколение индексов
func (m *Matcher) Generation() *Generation {
	return m.generation.Load()
}

// Stats снимок счетчиков запросов
func (m *Matcher) Stats() StatsSnapshot {
	return m.stats.Snapshot()
}

// Match прогоняет запрос через каскад стратегий и всегда возвращает
// MatchResult. Ошибки провайдеров глотаются внутри соответствующей
// стратегии, на результат каскада они не влияют
func (m *Matcher) Match(ctx context.Context, query string) MatchResult {
	gen := m.generation.Load()
	ranker := NewSuggestionRanker(gen.gazetteer, m.opts.SuggestionLimit)

	normalized := Normalize(query)
	working := normalized.Normalized

	result := MatchResult{
		OriginalQuery:   query,
		NormalizedQuery: working,
		Method:          MethodNone,
		Suggestions:     []string{},
	}

	// Пустой запрос: cold-start подсказки, никогда не ошибка
	if working == "" {
		result.Suggestions = ranker.ColdStart()
		m.stats.record(result.Method)
		return result
	}

	// Извлечение локации из естественного языка. Пропускается, если
	// запрос уже является точным алиасом: "vina del mar" содержит
	// предлог, но LLM тут нечего извлекать
	extracted := false
	if _, hit := gen.gazetteer.ExactLookup(working); !hit && m.opts.Extractor != nil && looksLikeSentence(working) {
		if intent := m.extractIntent(ctx, gen, query); intent != nil {
			candidate := Normalize(intent.ExtractedLocation).Normalized
			if candidate != "" {
				working = candidate
				extracted = true
				result.NormalizedQuery = working
				result.LocationIntent = intent
			}
		}
	}

	// Точное совпадение нормализованного алиаса
	if canonical, ok := gen.gazetteer.ExactLookup(working); ok {
		result.MatchedCommune = canonical
		result.Confidence = 1.0
		result.Method = MethodExact
		if extracted {
			result.Method = MethodNLExtracted
		}
		m.stats.record(result.Method)
		return result
	}

	// Семантический поиск по эмбеддингам
	var embeddingCandidates []Candidate
	if gen.embeddings != nil {
		callCtx, cancel := context.WithTimeout(ctx, m.opts.ProviderTimeout)
		candidates, err := gen.embeddings.Lookup(callCtx, working, m.opts.SuggestionThreshold)
		cancel()
		if err != nil {
			log.Printf("[Cascade] семантическая стратегия пропущена: %v", err)
		} else {
			embeddingCandidates = candidates
			if len(candidates) > 0 && candidates[0].Score >= m.opts.EmbeddingThreshold {
				result.MatchedCommune = candidates[0].Commune
				result.Confidence = clampConfidence(candidates[0].Score)
				result.Method = MethodEmbedding
				result.Suggestions = ranker.Rank(result.MatchedCommune, candidates)
				m.stats.record(result.Method)
				return result
			}
		}
	}

	// Нечеткий поиск: один проход с низким порогом обслуживает и уверенное
	// совпадение, и кандидатов в подсказки
	fuzzyCandidates := gen.fuzzy.Lookup(working, m.opts.SuggestionThreshold)
	if len(fuzzyCandidates) > 0 && fuzzyCandidates[0].Score >= m.opts.FuzzyThreshold {
		result.MatchedCommune = fuzzyCandidates[0].Commune
		result.Confidence = clampConfidence(fuzzyCandidates[0].Score)
		result.Method = MethodFuzzy
		result.Suggestions = ranker.Rank(result.MatchedCommune, fuzzyCandidates, embeddingCandidates)
		m.stats.record(result.Method)
		return result
	}

	// Триграммный поиск
	trigramCandidates := gen.trigrams.Lookup(working, m.opts.SuggestionThreshold)
	if len(trigramCandidates) > 0 && trigramCandidates[0].Score >= m.opts.TrigramThreshold {
		result.MatchedCommune = trigramCandidates[0].Commune
		result.Confidence = clampConfidence(trigramCandidates[0].Score)
		result.Method = MethodTrigram
		result.Suggestions = ranker.Rank(result.MatchedCommune, trigramCandidates, fuzzyCandidates, embeddingCandidates)
		m.stats.record(result.Method)
		return result
	}

	// Уверенного совпадения нет: лучший найденный счет и подсказки
	// из всего, что дали стратегии
	result.Confidence = bestScore(embeddingCandidates, fuzzyCandidates, trigramCandidates)
	result.Suggestions = ranker.Rank("", embeddingCandidates, fuzzyCandidates, trigramCandidates)
	m.stats.record(result.Method)
	return result
}

// Suggestions возвращает подсказки без попытки уверенного совпадения
// Пустой запрос дает cold-start подсказки
func (m *Matcher) Suggestions(ctx context.Context, query string, limit int) []string {
	gen := m.generation.Load()
	if limit <= 0 {
		limit = m.opts.SuggestionLimit
	}
	ranker := NewSuggestionRanker(gen.gazetteer, limit)

	working := Normalize(query).Normalized
	if working == "" {
		return ranker.ColdStart()
	}

	if canonical, ok := gen.gazetteer.ExactLookup(working); ok {
		return []string{canonical}
	}

	fuzzyCandidates := gen.fuzzy.Lookup(working, m.opts.SuggestionThreshold)
	trigramCandidates := gen.trigrams.Lookup(working, m.opts.SuggestionThreshold)
	return ranker.Rank("", fuzzyCandidates, trigramCandidates)
}

// extractIntent вызывает LLM-извлекатель с таймаутом, при отказе или
// низкой уверенности применяет детерминированный запасной вариант
func (m *Matcher) extractIntent(ctx context.Context, gen *Generation, query string) *LocationIntent {
	sample := gen.gazetteer.TopCommunes(DefaultExtractionSampleSize)

	callCtx, cancel := context.WithTimeout(ctx, m.opts.ProviderTimeout)
	intent, err := m.opts.Extractor.Extract(callCtx, query, sample)
	cancel()

	if err == nil && intent != nil &&
		ValidIntentType(string(intent.IntentType)) &&
		intent.Confidence >= m.opts.ExtractionConfidence {
		return intent
	}
	if err != nil {
		log.Printf("[Cascade] извлечение локации не удалось, запасной вариант: %v", err)
	}

	if m.opts.Fallback == nil {
		return nil
	}
	fallback, fbErr := m.opts.Fallback.Extract(ctx, query, sample)
	if fbErr != nil || fallback == nil {
		return nil
	}
	return fallback
}

// Слова, указывающие на запрос-предложение, а не на голое название комуны
// Предлоги сюда сознательно не входят: "vina del mar" это название
var sentenceWords = map[string]bool{
	"donde":     true,
	"hay":       true,
	"busco":     true,
	"buscar":    true,
	"necesito":  true,
	"quiero":    true,
	"encontrar": true,
	"farmacia":  true,
	"farmacias": true,
	"cerca":     true,
	"abierta":   true,
	"turno":     true,
}

// looksLikeSentence эвристика: запрос выглядит как предложение, если в нем
// больше трех слов или встречается глагол/маркер намерения
func looksLikeSentence(normalized string) bool {
	fields := strings.Fields(normalized)
	if len(fields) > 3 {
		return true
	}
	for _, word := range fields {
		if sentenceWords[word] {
			return true
		}
	}
	return false
}

// bestScore лучший счет среди всех групп кандидатов, 0 если пусто
func bestScore(groups ...[]Candidate) float64 {
	best := 0.0
	for _, group := range groups {
		if len(group) > 0 && group[0].Score > best {
			best = group[0].Score
		}
	}
	return clampConfidence(best)
}
