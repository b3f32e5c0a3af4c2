package database

import (
	"context"
	"testing"

	"pharmafinder/matching"
)

// Один коннект обязателен для :memory:, иначе пул откроет разные базы
func newTestDB(t *testing.T) *CommuneDB {
	t.Helper()
	db, err := NewCommuneDB(":memory:", DBConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("NewCommuneDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedPharmacies(t *testing.T, db *CommuneDB) {
	t.Helper()
	_, err := db.conn.Exec(`
		CREATE TABLE pharmacies (comuna TEXT, region TEXT);
		INSERT INTO pharmacies VALUES
			('Santiago', 'Metropolitana'),
			('Santiago', 'Metropolitana'),
			('Santiago', 'Metropolitana'),
			('Quilpué', 'Valparaíso'),
			('', 'Metropolitana'),
			(NULL, 'Metropolitana')`)
	if err != nil {
		t.Fatalf("seed pharmacies: %v", err)
	}
}

func TestLoadFromPharmacies(t *testing.T) {
	db := newTestDB(t)
	seedPharmacies(t, db)

	records, err := db.LoadFromPharmacies(context.Background())
	if err != nil {
		t.Fatalf("LoadFromPharmacies: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (empty and NULL communes skipped)", len(records))
	}
	// ORDER BY comuna: Quilpué, Santiago
	if records[0].CanonicalName != "Quilpué" || records[0].PharmacyCount != 1 {
		t.Errorf("records[0] = %+v, want Quilpué with 1 pharmacy", records[0])
	}
	if records[1].CanonicalName != "Santiago" || records[1].PharmacyCount != 3 {
		t.Errorf("records[1] = %+v, want Santiago with 3 pharmacies", records[1])
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	records := []matching.CommuneRecord{
		{CanonicalName: "Quilpué", Region: "Valparaíso", Aliases: []string{"El Belloto"}},
		{CanonicalName: "Ñuñoa", Region: "Metropolitana"},
	}
	if err := db.SaveRegistry(ctx, records); err != nil {
		t.Fatalf("SaveRegistry: %v", err)
	}

	loaded, err := db.LoadRegistry(ctx)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded = %d, want 2", len(loaded))
	}
	// ORDER BY canonical_name: Quilpué раньше Ñuñoa в UTF-8
	if loaded[0].CanonicalName != "Quilpué" || len(loaded[0].Aliases) != 1 || loaded[0].Aliases[0] != "El Belloto" {
		t.Errorf("loaded[0] = %+v, want Quilpué with alias El Belloto", loaded[0])
	}
}

// Реестр имеет приоритет над базой аптек, количество аптек подмешивается
func TestLoadRecords_PrefersRegistry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedPharmacies(t, db)

	records, err := db.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("fallback records = %d, want 2 from pharmacies", len(records))
	}

	if err := db.SaveRegistry(ctx, []matching.CommuneRecord{
		{CanonicalName: "Santiago", Region: "Metropolitana"},
	}); err != nil {
		t.Fatalf("SaveRegistry: %v", err)
	}

	records, err = db.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 1 || records[0].CanonicalName != "Santiago" {
		t.Fatalf("records = %+v, want registry entry only", records)
	}
	if records[0].PharmacyCount != 3 {
		t.Errorf("PharmacyCount = %d, want 3 merged from pharmacies", records[0].PharmacyCount)
	}
}
