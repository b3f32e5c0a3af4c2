package matching

import "sync/atomic"

// Stats счетчики обработанных запросов по методам сопоставления
// Все операции атомарны, снимок может быть неточным между инкрементами
type Stats struct {
	total       atomic.Int64
	matched     atomic.Int64
	exact       atomic.Int64
	embedding   atomic.Int64
	fuzzy       atomic.Int64
	trigram     atomic.Int64
	nlExtracted atomic.Int64
	none        atomic.Int64
}

// StatsSnapshot моментальный снимок счетчиков для /health и логов
type StatsSnapshot struct {
	Total       int64 `json:"total"`
	Matched     int64 `json:"matched"`
	Exact       int64 `json:"exact"`
	Embedding   int64 `json:"embedding"`
	Fuzzy       int64 `json:"fuzzy"`
	Trigram     int64 `json:"trigram"`
	NLExtracted int64 `json:"nl_extracted"`
	None        int64 `json:"none"`
}

func (s *Stats) record(method MatchMethod) {
	s.total.Add(1)
	switch method {
	case MethodExact:
		s.matched.Add(1)
		s.exact.Add(1)
	case MethodEmbedding:
		s.matched.Add(1)
		s.embedding.Add(1)
	case MethodFuzzy:
		s.matched.Add(1)
		s.fuzzy.Add(1)
	case MethodTrigram:
		s.matched.Add(1)
		s.trigram.Add(1)
	case MethodNLExtracted:
		s.matched.Add(1)
		s.nlExtracted.Add(1)
	default:
		s.none.Add(1)
	}
}

// Snapshot возвращает текущие значения счетчиков
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Total:       s.total.Load(),
		Matched:     s.matched.Load(),
		Exact:       s.exact.Load(),
		Embedding:   s.embedding.Load(),
		Fuzzy:       s.fuzzy.Load(),
		Trigram:     s.trigram.Load(),
		NLExtracted: s.nlExtracted.Load(),
		None:        s.none.Load(),
	}
}
