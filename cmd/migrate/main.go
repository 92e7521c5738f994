package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"rockparser/internal/config"
	"rockparser/internal/dto"
	"rockparser/internal/repository/sqlite"
	"rockparser/internal/service/storage"
)

// Imports existing CSV logs into the SQLite mirror, one run per file.
func main() {
	dataDir := flag.String("data", "parser_data", "Directory containing CSV logs")
	dbPath := flag.String("db", "data/records.db", "Database path")
	flag.Parse()

	fmt.Printf("Migrating logs from %s to database %s\n", *dataDir, *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	runs := sqlite.NewRunRepository(db)
	records := sqlite.NewRecordRepository(db)

	files, err := os.ReadDir(*dataDir)
	if err != nil {
		log.Fatalf("Failed to read data directory: %v", err)
	}

	imported, skipped, total := 0, 0, 0
	for _, file := range files {
		if file.IsDir() || file.Name() != config.CSVName(file.Name()) {
			continue
		}
		path := filepath.Join(*dataDir, file.Name())

		rows, err := storage.ReadFile(path)
		if err != nil {
			log.Printf("⚠️  Skipping %s: %v", file.Name(), err)
			skipped++
			continue
		}

		info, err := file.Info()
		if err != nil {
			log.Printf("⚠️  Failed to get info for %s: %v", file.Name(), err)
			skipped++
			continue
		}

		runID, err := runs.CreateRun(path, info.ModTime())
		if err != nil {
			log.Fatalf("Failed to create run for %s: %v", file.Name(), err)
		}
		if err := records.InsertBatch(runID, rows); err != nil {
			log.Fatalf("Failed to insert records of %s: %v", file.Name(), err)
		}

		fmt.Printf("   %s -> run %s (%d records)\n", file.Name(), runID, len(rows))
		imported++
		total += len(rows)
	}

	if imported == 0 {
		fmt.Println("No logs found to migrate")
		return
	}

	fmt.Printf("✅ Successfully migrated %d records from %d logs\n", total, imported)
	if skipped > 0 {
		fmt.Printf("⚠️  Skipped %d files (invalid format or errors)\n", skipped)
	}

	all, err := runs.ListRuns()
	if err != nil {
		return
	}
	count, _ := records.GetTotalCount(&dto.RecordFilter{})
	fmt.Printf("\n📊 Database Statistics:\n")
	fmt.Printf("   Total runs: %d\n", len(all))
	fmt.Printf("   Total records: %d\n", count)
	for _, run := range all {
		fmt.Printf("      - %s (%s): %d records\n", run.Source, run.StartedAt.Format(time.DateTime), run.Records)
	}
}
