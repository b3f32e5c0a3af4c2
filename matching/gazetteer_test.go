package matching

import "testing"

func testRecords() []CommuneRecord {
	return []CommuneRecord{
		{CanonicalName: "Quilpué", Region: "Valparaíso", Aliases: []string{"El Belloto"}, PharmacyCount: 12},
		{CanonicalName: "Viña del Mar", Region: "Valparaíso", PharmacyCount: 40},
		{CanonicalName: "Santiago", Region: "Metropolitana", PharmacyCount: 120},
		{CanonicalName: "Ñuñoa", Region: "Metropolitana", PharmacyCount: 25},
		{CanonicalName: "Puerto Montt", Region: "Los Lagos", PharmacyCount: 8},
	}
}

func TestBuildGazetteer_Empty(t *testing.T) {
	_, err := BuildGazetteer(nil)
	if err == nil {
		t.Fatal("expected error on empty records")
	}
	if _, ok := err.(*DataUnavailableError); !ok {
		t.Errorf("expected *DataUnavailableError, got %T", err)
	}
}

func TestGazetteer_ExactLookup(t *testing.T) {
	g, err := BuildGazetteer(testRecords())
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}

	tests := []struct {
		normalized string
		canonical  string
		found      bool
	}{
		{"quilpue", "Quilpué", true},
		{"el belloto", "Quilpué", true},
		{"vina del mar", "Viña del Mar", true},
		{"nunoa", "Ñuñoa", true},
		{"puerto montt", "Puerto Montt", true},
		{"valparaiso", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		canonical, found := g.ExactLookup(tt.normalized)
		if found != tt.found || canonical != tt.canonical {
			t.Errorf("ExactLookup(%q) = (%q, %v), want (%q, %v)",
				tt.normalized, canonical, found, tt.canonical, tt.found)
		}
	}
}

func TestGazetteer_TopCommunes(t *testing.T) {
	g, err := BuildGazetteer(testRecords())
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}

	top := g.TopCommunes(3)
	expected := []string{"Santiago", "Viña del Mar", "Ñuñoa"}
	if len(top) != len(expected) {
		t.Fatalf("TopCommunes(3) returned %d communes, want %d", len(top), len(expected))
	}
	for i, name := range expected {
		if top[i] != name {
			t.Errorf("TopCommunes(3)[%d] = %q, want %q", i, top[i], name)
		}
	}

	// n больше размера газетира отдает все комуны
	all := g.TopCommunes(100)
	if len(all) != g.Len() {
		t.Errorf("TopCommunes(100) returned %d, want %d", len(all), g.Len())
	}
}

func TestGazetteer_SkipsEmptyCanonical(t *testing.T) {
	records := []CommuneRecord{
		{CanonicalName: ""},
		{CanonicalName: "Santiago", PharmacyCount: 1},
	}
	g, err := BuildGazetteer(records)
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}
