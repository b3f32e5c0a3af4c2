package importer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTestXLSX(t *testing.T) string {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()

	rows := [][]interface{}{
		{"Comuna", "Región", "Alias"},
		{"Quilpué", "Valparaíso", "El Belloto; Belloto"},
		{"Ñuñoa", "Metropolitana", ""},
		{"", "Metropolitana", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := file.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "communes.xlsx")
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestImportXLSX(t *testing.T) {
	records, err := ImportXLSX(writeTestXLSX(t))
	if err != nil {
		t.Fatalf("ImportXLSX: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (header and empty rows skipped)", len(records))
	}
	if records[0].CanonicalName != "Quilpué" || records[0].Region != "Valparaíso" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if len(records[0].Aliases) != 2 || records[0].Aliases[0] != "El Belloto" {
		t.Errorf("aliases = %v, want [El Belloto Belloto]", records[0].Aliases)
	}
	if len(records[1].Aliases) != 0 {
		t.Errorf("records[1].Aliases = %v, want empty", records[1].Aliases)
	}
}

func TestImportXLSX_MissingFile(t *testing.T) {
	if _, err := ImportXLSX(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportHTML(t *testing.T) {
	html := `<html><body>
		<table>
			<tr><th>Comuna</th><th>Región</th><th>Alias</th></tr>
			<tr><td>Viña del Mar</td><td>Valparaíso</td><td>Vina, Viña</td></tr>
			<tr><td>Santiago</td><td>Metropolitana</td><td></td></tr>
			<tr><td></td><td>Metropolitana</td><td></td></tr>
		</table>
	</body></html>`

	records, err := ImportHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("ImportHTML: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].CanonicalName != "Viña del Mar" || len(records[0].Aliases) != 2 {
		t.Errorf("records[0] = %+v", records[0])
	}
}

func TestImportHTML_NoTable(t *testing.T) {
	if _, err := ImportHTML(strings.NewReader("<html><body><p>nada</p></body></html>")); err == nil {
		t.Fatal("expected error when document has no table")
	}
}
