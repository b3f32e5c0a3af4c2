package importer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pharmafinder/matching"
)

// ImportHTML читает реестр комун из HTML-таблицы. Берется первая
// таблица документа: первая колонка название комуны, вторая регион,
// третья (если есть) алиасы. Строки заголовков (th) пропускаются
func ImportHTML(reader io.Reader) ([]matching.CommuneRecord, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table found in html document")
	}

	var records []matching.CommuneRecord
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		name := strings.TrimSpace(cells.Eq(0).Text())
		if name == "" {
			return
		}
		record := matching.CommuneRecord{
			CanonicalName: name,
			Region:        strings.TrimSpace(cells.Eq(1).Text()),
		}
		if cells.Length() > 2 {
			record.Aliases = splitAliases(cells.Eq(2).Text())
		}
		records = append(records, record)
	})

	if len(records) == 0 {
		return nil, fmt.Errorf("no commune records found in html table")
	}
	return records, nil
}

// ImportHTMLFile читает реестр комун из HTML-файла
func ImportHTMLFile(path string) ([]matching.CommuneRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open html file: %w", err)
	}
	defer file.Close()
	return ImportHTML(file)
}
