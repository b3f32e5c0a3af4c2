// Package database загрузка справочника комун из базы аптек
// и хранение импортированного реестра комун
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pharmafinder/matching"
)

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultDBConfig возвращает конфигурацию подключения по умолчанию
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// CommuneDB обертка над базой аптек: отдает справочные записи комун
// и хранит реестр, загруженный импортером
type CommuneDB struct {
	conn             *sql.DB
	tableCreateMutex sync.Mutex
}

// NewCommuneDB открывает базу по пути. Для :memory: и тестов путь
// передается как есть
func NewCommuneDB(path string, config DBConfig) (*CommuneDB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(config.MaxOpenConns)
	conn.SetMaxIdleConns(config.MaxIdleConns)
	conn.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &CommuneDB{conn: conn}, nil
}

// Close закрывает соединение с базой
func (db *CommuneDB) Close() error {
	return db.conn.Close()
}

// LoadFromPharmacies собирает справочник комун из таблицы аптек:
// уникальные комуны с регионом и количеством аптек. Количество аптек
// задает порядок cold-start подсказок
func (db *CommuneDB) LoadFromPharmacies(ctx context.Context) ([]matching.CommuneRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT comuna, COALESCE(region, ''), COUNT(*)
		FROM pharmacies
		WHERE comuna IS NOT NULL AND comuna != ''
		GROUP BY comuna
		ORDER BY comuna`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pharmacies: %w", err)
	}
	defer rows.Close()

	var records []matching.CommuneRecord
	for rows.Next() {
		var record matching.CommuneRecord
		if err := rows.Scan(&record.CanonicalName, &record.Region, &record.PharmacyCount); err != nil {
			return nil, fmt.Errorf("failed to scan commune row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate commune rows: %w", err)
	}

	log.Printf("[DB] Загружено %d комун из базы аптек", len(records))
	return records, nil
}

// ensureRegistryTable создает таблицу реестра комун при первом обращении
func (db *CommuneDB) ensureRegistryTable(ctx context.Context) error {
	db.tableCreateMutex.Lock()
	defer db.tableCreateMutex.Unlock()

	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS commune_registry (
			canonical_name TEXT PRIMARY KEY,
			region TEXT,
			aliases TEXT,
			pharmacy_count INTEGER DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("failed to create commune_registry table: %w", err)
	}
	return nil
}

// SaveRegistry сохраняет импортированный реестр комун, заменяя
// существующие записи. Алиасы хранятся как JSON-массив
func (db *CommuneDB) SaveRegistry(ctx context.Context, records []matching.CommuneRecord) error {
	if err := db.ensureRegistryTable(ctx); err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO commune_registry
		(canonical_name, region, aliases, pharmacy_count)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		aliasesJSON, err := json.Marshal(record.Aliases)
		if err != nil {
			return fmt.Errorf("failed to marshal aliases for %s: %w", record.CanonicalName, err)
		}
		if _, err := stmt.ExecContext(ctx, record.CanonicalName, record.Region,
			string(aliasesJSON), record.PharmacyCount); err != nil {
			return fmt.Errorf("failed to insert commune %s: %w", record.CanonicalName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registry: %w", err)
	}

	log.Printf("[DB] Сохранено %d комун в реестр", len(records))
	return nil
}

// LoadRegistry читает импортированный реестр комун
// Возвращает пустой список, если реестр еще не импортирован
func (db *CommuneDB) LoadRegistry(ctx context.Context) ([]matching.CommuneRecord, error) {
	if err := db.ensureRegistryTable(ctx); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT canonical_name, COALESCE(region, ''), COALESCE(aliases, '[]'), pharmacy_count
		FROM commune_registry
		ORDER BY canonical_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query commune_registry: %w", err)
	}
	defer rows.Close()

	var records []matching.CommuneRecord
	for rows.Next() {
		var record matching.CommuneRecord
		var aliasesJSON string
		if err := rows.Scan(&record.CanonicalName, &record.Region, &aliasesJSON, &record.PharmacyCount); err != nil {
			return nil, fmt.Errorf("failed to scan registry row: %w", err)
		}
		if err := json.Unmarshal([]byte(aliasesJSON), &record.Aliases); err != nil {
			return nil, fmt.Errorf("failed to parse aliases for %s: %w", record.CanonicalName, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registry rows: %w", err)
	}

	return records, nil
}

// LoadRecords отдает лучший доступный справочник: импортированный реестр,
// если он есть, иначе комуны из базы аптек. Количество аптек подмешивается
// в реестр для порядка подсказок
func (db *CommuneDB) LoadRecords(ctx context.Context) ([]matching.CommuneRecord, error) {
	registry, err := db.LoadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	if len(registry) == 0 {
		return db.LoadFromPharmacies(ctx)
	}

	counts, err := db.pharmacyCounts(ctx)
	if err != nil {
		log.Printf("[DB] Количество аптек недоступно, порядок подсказок по реестру: %v", err)
		return registry, nil
	}
	for i := range registry {
		if count, ok := counts[registry[i].CanonicalName]; ok && registry[i].PharmacyCount == 0 {
			registry[i].PharmacyCount = count
		}
	}
	return registry, nil
}

// pharmacyCounts количество аптек по комунам
func (db *CommuneDB) pharmacyCounts(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT comuna, COUNT(*)
		FROM pharmacies
		WHERE comuna IS NOT NULL AND comuna != ''
		GROUP BY comuna`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var commune string
		var count int
		if err := rows.Scan(&commune, &count); err != nil {
			return nil, err
		}
		counts[commune] = count
	}
	return counts, rows.Err()
}
