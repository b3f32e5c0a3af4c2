package matching

import (
	"sort"
)

// CommuneRecord каноническая запись справочника комун
// Принадлежит исключительно газетиру и неизменяема после построения
type CommuneRecord struct {
	CanonicalName string   `json:"canonical_name"`
	Region        string   `json:"region"`
	Aliases       []string `json:"aliases,omitempty"`
	// PharmacyCount количество аптек в комуне, задает порядок
	// cold-start подсказок при пустом запросе
	PharmacyCount int `json:"pharmacy_count,omitempty"`
}

// AliasEntry нормализованный алиас с привязкой к канонической комуне
type AliasEntry struct {
	Alias      string // исходная форма алиаса
	Normalized string // нормализованная форма
	Canonical  string // каноническое название комуны
}

// Gazetteer справочник канонических названий комун с производными индексами.
// Единственная точка мутации — построение; все последующие чтения
// конкурентно-безопасны без блокировок
type Gazetteer struct {
	records    map[string]CommuneRecord
	aliasIndex map[string]string // нормализованный алиас -> каноническое название
	aliases    []AliasEntry
	communes   []string // канонические названия, отсортированы
	popular    []string // канонические названия по убыванию количества аптек
}

// BuildGazetteer строит газетир из справочных записей
// Возвращает DataUnavailableError, если записей нет: без справочника
// компонент не может стать готовым
func BuildGazetteer(records []CommuneRecord) (*Gazetteer, error) {
	if len(records) == 0 {
		return nil, &DataUnavailableError{Reason: "empty commune reference list"}
	}

	g := &Gazetteer{
		records:    make(map[string]CommuneRecord, len(records)),
		aliasIndex: make(map[string]string),
	}

	for _, record := range records {
		if record.CanonicalName == "" {
			continue
		}
		// Каноническое название уникально: последняя запись выигрывает
		g.records[record.CanonicalName] = record

		// Каноническое название само по себе алиас
		g.addAlias(record.CanonicalName, record.CanonicalName)
		for _, alias := range record.Aliases {
			g.addAlias(alias, record.CanonicalName)
		}
	}

	if len(g.records) == 0 {
		return nil, &DataUnavailableError{Reason: "no records with canonical names"}
	}

	g.communes = make([]string, 0, len(g.records))
	for name := range g.records {
		g.communes = append(g.communes, name)
	}
	sort.Strings(g.communes)

	// Популярность: по убыванию количества аптек, при равенстве по алфавиту
	g.popular = append([]string(nil), g.communes...)
	sort.SliceStable(g.popular, func(i, j int) bool {
		return g.records[g.popular[i]].PharmacyCount > g.records[g.popular[j]].PharmacyCount
	})

	return g, nil
}

// addAlias регистрирует алиас, отображение много-к-одному
func (g *Gazetteer) addAlias(alias, canonical string) {
	normalized := Normalize(alias).Normalized
	if normalized == "" {
		return
	}
	if _, exists := g.aliasIndex[normalized]; !exists {
		g.aliasIndex[normalized] = canonical
		g.aliases = append(g.aliases, AliasEntry{
			Alias:      alias,
			Normalized: normalized,
			Canonical:  canonical,
		})
	}
}

// ExactLookup ищет точное совпадение нормализованной строки среди алиасов
func (g *Gazetteer) ExactLookup(normalized string) (string, bool) {
	canonical, ok := g.aliasIndex[normalized]
	return canonical, ok
}

// Aliases возвращает все нормализованные алиасы для построителей индексов
func (g *Gazetteer) Aliases() []AliasEntry {
	return g.aliases
}

// Communes возвращает отсортированный список канонических названий
func (g *Gazetteer) Communes() []string {
	return g.communes
}

// TopCommunes возвращает первые n комун по количеству аптек
// Используется для cold-start подсказок при пустом запросе
func (g *Gazetteer) TopCommunes(n int) []string {
	if n <= 0 || n > len(g.popular) {
		n = len(g.popular)
	}
	result := make([]string, n)
	copy(result, g.popular[:n])
	return result
}

// Record возвращает запись комуны по каноническому названию
func (g *Gazetteer) Record(canonical string) (CommuneRecord, bool) {
	record, ok := g.records[canonical]
	return record, ok
}

// Len количество комун в газетире
func (g *Gazetteer) Len() int {
	return len(g.records)
}
