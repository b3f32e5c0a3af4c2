package matching

import "testing"

func TestTrigramIndex_Lookup(t *testing.T) {
	records := append(testRecords(), CommuneRecord{
		CanonicalName: "La Florida", Region: "Metropolitana", PharmacyCount: 30,
	})
	g, err := BuildGazetteer(records)
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}
	idx := BuildTrigramIndex(g)

	// "florida" разделяет большинство триграмм с "la florida"
	candidates := idx.Lookup("florida", 0.3)
	if len(candidates) == 0 {
		t.Fatal("Lookup(florida) returned no candidates")
	}
	if candidates[0].Commune != "La Florida" {
		t.Errorf("top candidate = %q, want La Florida", candidates[0].Commune)
	}
	if candidates[0].Score < 0.6 {
		t.Errorf("top score = %f, want >= 0.6", candidates[0].Score)
	}

	// Идентичная строка дает Жаккар 1.0
	candidates = idx.Lookup("quilpue", 0.3)
	if len(candidates) == 0 || candidates[0].Commune != "Quilpué" || candidates[0].Score != 1.0 {
		t.Errorf("Lookup(quilpue) = %v, want Quilpué with 1.0", candidates)
	}
}

func TestTrigramIndex_Lookup_NoOverlap(t *testing.T) {
	g, err := BuildGazetteer(testRecords())
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}
	idx := BuildTrigramIndex(g)

	if candidates := idx.Lookup("xyz123", 0.3); len(candidates) != 0 {
		t.Errorf("Lookup(xyz123) = %v, want empty", candidates)
	}
	if candidates := idx.Lookup("", 0.3); candidates != nil {
		t.Errorf("Lookup(empty) = %v, want nil", candidates)
	}
}

func TestTrigramIndex_Lookup_Sorted(t *testing.T) {
	g, err := BuildGazetteer(testRecords())
	if err != nil {
		t.Fatalf("BuildGazetteer: %v", err)
	}
	idx := BuildTrigramIndex(g)

	candidates := idx.Lookup("puerto", 0.01)
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[i-1].Score {
			t.Errorf("candidates not sorted descending at %d", i)
		}
	}
}
