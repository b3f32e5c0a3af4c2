package matching

import "testing"

func TestSuggestionRanker_Rank(t *testing.T) {
	g, err := BuildGazetteer(testRecords())
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}
	ranker := NewSuggestionRanker(g, 3)

	groupA := []Candidate{
		{Commune: "Quilpué", Score: 0.9},
		{Commune: "Santiago", Score: 0.5},
	}
	groupB := []Candidate{
		{Commune: "Santiago", Score: 0.8}, // лучший счет для Santiago
		{Commune: "Ñuñoa", Score: 0.4},
		{Commune: "Puerto Montt", Score: 0.2},
	}

	suggestions := ranker.Rank("", groupA, groupB)
	expected := []string{"Quilpué", "Santiago", "Ñuñoa"}
	if len(suggestions) != len(expected) {
		t.Fatalf("Rank returned %v, want %v", suggestions, expected)
	}
	for i, name := range expected {
		if suggestions[i] != name {
			t.Errorf("Rank[%d] = %q, want %q", i, suggestions[i], name)
		}
	}
}

func TestSuggestionRanker_ExcludesWinner(t *testing.T) {
	g, err := BuildGazetteer(testRecords())
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}
	ranker := NewSuggestionRanker(g, 5)

	group := []Candidate{
		{Commune: "Quilpué", Score: 0.95},
		{Commune: "Santiago", Score: 0.5},
	}
	suggestions := ranker.Rank("Quilpué", group)
	for _, name := range suggestions {
		if name == "Quilpué" {
			t.Error("suggestions contain excluded commune")
		}
	}
	if len(suggestions) != 1 || suggestions[0] != "Santiago" {
		t.Errorf("Rank = %v, want [Santiago]", suggestions)
	}
}

func TestSuggestionRanker_NoDuplicates(t *testing.T) {
	g, err := BuildGazetteer(testRecords())
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}
	ranker := NewSuggestionRanker(g, 10)

	group := []Candidate{
		{Commune: "Santiago", Score: 0.7},
		{Commune: "Santiago", Score: 0.6},
	}
	suggestions := ranker.Rank("", group, group)
	if len(suggestions) != 1 {
		t.Errorf("Rank = %v, want single entry", suggestions)
	}
}

func TestSuggestionRanker_ColdStart(t *testing.T) {
	g, err := BuildGazetteer(testRecords())
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}
	ranker := NewSuggestionRanker(g, 3)

	suggestions := ranker.ColdStart()
	expected := []string{"Santiago", "Viña del Mar", "Ñuñoa"}
	for i, name := range expected {
		if suggestions[i] != name {
			t.Errorf("ColdStart[%d] = %q, want %q", i, suggestions[i], name)
		}
	}
}
