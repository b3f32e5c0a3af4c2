package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pharmafinder/database"
	"pharmafinder/importer"
	"pharmafinder/matching"
)

func main() {
	var (
		filePath = flag.String("file", "", "Path to the commune registry file (.xlsx or .html)")
		dbPath   = flag.String("db", "./pharmacies.db", "Path to pharmacy database")
		verbose  = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: import_communes -file <path_to_registry_file> [-db <database_path>] [-verbose]")
		fmt.Println("\nExample:")
		fmt.Println("  import_communes -file comunas_chile.xlsx -db pharmacies.db")
		os.Exit(1)
	}

	// Проверяем существование файла
	if _, err := os.Stat(*filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Fatalf("File not found: %s", *filePath)
		}
		log.Fatalf("Error checking file %s: %v", *filePath, err)
	}

	// Формат определяется расширением
	var records []matching.CommuneRecord
	var err error
	switch strings.ToLower(filepath.Ext(*filePath)) {
	case ".xlsx":
		records, err = importer.ImportXLSX(*filePath)
	case ".html", ".htm":
		records, err = importer.ImportHTMLFile(*filePath)
	default:
		log.Fatalf("Unsupported file format: %s (expected .xlsx or .html)", filepath.Ext(*filePath))
	}
	if err != nil {
		log.Fatalf("Failed to import registry file: %v", err)
	}

	if *verbose {
		log.Printf("Parsed %d commune records from %s", len(records), *filePath)
		for _, rec := range records {
			log.Printf("  %s (%s), aliases: %v", rec.CanonicalName, rec.Region, rec.Aliases)
		}
	}

	// Открываем базу данных
	db, err := database.NewCommuneDB(*dbPath, database.DefaultDBConfig())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Сохраняем реестр
	if err := db.SaveRegistry(context.Background(), records); err != nil {
		log.Fatalf("Failed to save commune registry: %v", err)
	}

	log.Printf("Imported %d communes into %s", len(records), *dbPath)
}
