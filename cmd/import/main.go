// Command import loads fiscal settings and saved period selections from a
// JSON file into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -json data/selections.json -db data/fiscal.db
//
// The file looks like:
//
//	{
//	  "settings": {"fiscal_year_start": {"month": 4, "day": 6}, "window": {"future": 4, "past": 4}},
//	  "selections": [{"scope": "board-report", "granularity": "quarter", "value": "2024-07-06"}]
//	}
//
// Everything is written in a single transaction. Existing selections with
// the same scope are replaced; a file without settings keeps the stored
// ones. Every selection must start a fiscal period under the settings in
// effect after the import.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/fiscal-api/internal/database"
	"github.com/zapponejosh/fiscal-api/internal/fiscal"
	"github.com/zapponejosh/fiscal-api/internal/logger"
)

func main() {
	// Parse command line flags
	jsonPath := flag.String("json", "data/selections.json", "Path to import JSON file")
	dbPath := flag.String("db", "data/fiscal.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := "info"
	if *verbose {
		logLevel = "debug"
	}
	log := logger.New(os.Stdout, logLevel, "text")

	stats, err := run(*jsonPath, *dbPath, log)
	if err != nil {
		log.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printSummary(os.Stdout, stats)
	log.Info("import complete")
}

// ImportStats tracks import statistics.
type ImportStats struct {
	SettingsUpdated bool
	Start           fiscal.FiscalYearStart
	Selections      int
	Elapsed         time.Duration
}

func run(jsonPath, dbPath string, log *slog.Logger) (*ImportStats, error) {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and parse JSON
	// =========================================================================
	log.Info("reading JSON file", slog.String("path", jsonPath))

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read JSON file: %w", err)
	}

	var importData database.ImportData
	if err := json.Unmarshal(data, &importData); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	log.Info("parsed JSON",
		slog.Bool("has_settings", importData.Settings != nil),
		slog.Int("selections", len(importData.Selections)),
	)

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	log.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Import data in a transaction
	// =========================================================================
	start, err := effectiveStart(ctx, db, importData.Settings)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{Start: start}
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		if importData.Settings != nil {
			if err := tx.SaveSettings(ctx, importData.Settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			stats.SettingsUpdated = true
		}
		return importSelections(ctx, tx, importData.Selections, start, log, stats)
	})
	if err != nil {
		return nil, fmt.Errorf("import data: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import
	// =========================================================================
	all, err := db.ListSelections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}

	stats.Elapsed = time.Since(startTime)
	log.Info("import verified",
		slog.Int("imported", stats.Selections),
		slog.Int("stored", len(all)),
		slog.Duration("elapsed", stats.Elapsed),
	)

	return stats, nil
}

// effectiveStart is the fiscal year start selections are checked against:
// the imported one if present, otherwise whatever is stored.
func effectiveStart(ctx context.Context, db *database.DB, imported *database.Settings) (fiscal.FiscalYearStart, error) {
	if imported != nil {
		return imported.FiscalYearStart.Normalize(), nil
	}

	stored, err := db.GetSettings(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return fiscal.Default(), nil
	}
	if err != nil {
		return fiscal.FiscalYearStart{}, fmt.Errorf("load settings: %w", err)
	}
	return stored.FiscalYearStart, nil
}

// importSelections saves each selection after checking it starts a period.
func importSelections(ctx context.Context, tx *database.Tx, selections []database.PeriodSelection, start fiscal.FiscalYearStart, log *slog.Logger, stats *ImportStats) error {
	for i := range selections {
		sel := &selections[i]

		date, err := fiscal.ParseDate(sel.Value)
		if err != nil {
			return fmt.Errorf("selection %d (%s): %w: value %q", i+1, sel.Scope, database.ErrInvalidSelection, sel.Value)
		}
		periodStart, err := fiscal.PeriodStart(date, start, sel.Granularity)
		if err != nil {
			return fmt.Errorf("selection %d (%s): %w", i+1, sel.Scope, err)
		}
		if !periodStart.Equal(date) {
			return fmt.Errorf("selection %d (%s): %w: %s does not start a fiscal %s",
				i+1, sel.Scope, database.ErrInvalidSelection, sel.Value, sel.Granularity)
		}

		if err := tx.SaveSelection(ctx, sel); err != nil {
			return fmt.Errorf("selection %d (%s): %w", i+1, sel.Scope, err)
		}
		stats.Selections++

		log.Debug("imported selection",
			slog.String("scope", sel.Scope),
			slog.String("granularity", string(sel.Granularity)),
			slog.String("value", sel.Value),
		)
	}
	return nil
}

func printSummary(w io.Writer, stats *ImportStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Import Summary ===")
	fmt.Fprintf(w, "Settings updated:    %v\n", stats.SettingsUpdated)
	fmt.Fprintf(w, "Fiscal year start:   %s\n", stats.Start)
	fmt.Fprintf(w, "Selections imported: %d\n", stats.Selections)
	fmt.Fprintf(w, "Time elapsed:        %v\n", stats.Elapsed.Round(time.Millisecond))
}
