package matching

// MatchMethod метод, которым был получен результат сопоставления
type MatchMethod string

const (
	MethodExact       MatchMethod = "exact"
	MethodTrigram     MatchMethod = "trigram"
	MethodFuzzy       MatchMethod = "fuzzy"
	MethodEmbedding   MatchMethod = "embedding"
	MethodNLExtracted MatchMethod = "nl_extracted"
	MethodNone        MatchMethod = "none"
)

// IntentType тип намерения, извлеченного из запроса на естественном языке
type IntentType string

const (
	IntentPharmacySearch IntentType = "pharmacy_search"
	IntentLocationQuery  IntentType = "location_query"
	IntentGeneral        IntentType = "general"
)

// ValidIntentType проверяет, что значение входит в допустимый набор
func ValidIntentType(value string) bool {
	switch IntentType(value) {
	case IntentPharmacySearch, IntentLocationQuery, IntentGeneral:
		return true
	}
	return false
}

// LocationIntent результат извлечения локации из запроса на естественном языке
// Reasoning предназначен только для логов и никогда не парсится
type LocationIntent struct {
	OriginalQuery     string     `json:"original_query"`
	ExtractedLocation string     `json:"extracted_location"`
	IntentType        IntentType `json:"intent_type"`
	Confidence        float64    `json:"confidence"`
	Reasoning         string     `json:"reasoning"`
}

// MatchResult результат сопоставления запроса с канонической комуной
// MatchedCommune пустая строка означает отсутствие уверенного совпадения
type MatchResult struct {
	OriginalQuery   string          `json:"original_query"`
	NormalizedQuery string          `json:"normalized_query"`
	MatchedCommune  string          `json:"matched_commune"`
	Confidence      float64         `json:"confidence"`
	Method          MatchMethod     `json:"method"`
	Suggestions     []string        `json:"suggestions"`
	LocationIntent  *LocationIntent `json:"location_intent,omitempty"`
}

// Matched сообщает, найдено ли уверенное совпадение
func (r MatchResult) Matched() bool {
	return r.MatchedCommune != "" && r.Method != MethodNone
}

// Candidate кандидат со счетом от одной из стратегий сопоставления
type Candidate struct {
	Commune string
	Score   float64
}

// clampConfidence обрезает уверенность до диапазона [0, 1]
func clampConfidence(value float64) float64 {
	if value < 0.0 {
		return 0.0
	}
	if value > 1.0 {
		return 1.0
	}
	return value
}
