// Package importer загружает реестр комун из внешних файлов:
// официальной XLSX-таблицы или HTML-страницы с таблицей
package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"pharmafinder/matching"
)

// ImportXLSX читает реестр комун из XLSX-файла. Ожидается первый лист
// с колонками: название комуны, регион, алиасы (через запятую или
// точку с запятой). Первая строка считается заголовком
func ImportXLSX(path string) ([]matching.CommuneRecord, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheets[0])
	}

	var records []matching.CommuneRecord
	for _, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, 0))
		if name == "" {
			continue
		}
		records = append(records, matching.CommuneRecord{
			CanonicalName: name,
			Region:        strings.TrimSpace(cell(row, 1)),
			Aliases:       splitAliases(cell(row, 2)),
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no commune records found in %s", path)
	}
	return records, nil
}

// cell безопасное чтение ячейки: короткие строки дают пустое значение
func cell(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}

// splitAliases разбирает список алиасов, разделенных запятой
// или точкой с запятой
func splitAliases(raw string) []string {
	raw = strings.ReplaceAll(raw, ";", ",")
	var aliases []string
	for _, part := range strings.Split(raw, ",") {
		if alias := strings.TrimSpace(part); alias != "" {
			aliases = append(aliases, alias)
		}
	}
	return aliases
}
