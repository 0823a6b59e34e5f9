package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

// testDB creates a temporary in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(DefaultConfig(":memory:"), logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// -----------------------------------------------------------------
// DB tests
// -----------------------------------------------------------------

func TestOpen(t *testing.T) {
	db := testDB(t)

	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/fiscal.db"

	db, err := Open(DefaultConfig(path), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Already applied in testDB, so this is a no-op
	count, err := db.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Migrate() count = %d, want 0 (already applied)", count)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO period_selections (scope, granularity, value) VALUES ('x', 'year', '2024-01-01')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	if _, err := db.GetSelection(ctx, "x"); !IsNotFound(err) {
		t.Errorf("GetSelection() after rollback error = %v, want ErrNotFound", err)
	}
}

// -----------------------------------------------------------------
// Settings tests
// -----------------------------------------------------------------

func TestGetSettings_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetSettings(context.Background())
	if !IsNotFound(err) {
		t.Errorf("GetSettings() error = %v, want ErrNotFound", err)
	}
}

func TestSaveSettings(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	s := &Settings{
		FiscalYearStart: fiscal.FiscalYearStart{Month: time.April, Day: 6},
		Window:          fiscal.Window{Future: 2, Past: 6},
	}
	if err := db.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	got, err := db.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if got.FiscalYearStart != s.FiscalYearStart {
		t.Errorf("FiscalYearStart = %v, want %v", got.FiscalYearStart, s.FiscalYearStart)
	}
	if got.Window != s.Window {
		t.Errorf("Window = %+v, want %+v", got.Window, s.Window)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	// Second save replaces the row
	s.FiscalYearStart = fiscal.FiscalYearStart{Month: time.July, Day: 1}
	if err := db.SaveSettings(ctx, s); err != nil {
		t.Fatalf("second SaveSettings() error = %v", err)
	}
	got, err = db.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if got.FiscalYearStart.Month != time.July {
		t.Errorf("Month = %v, want July", got.FiscalYearStart.Month)
	}
}

func TestSaveSettings_NormalizesUnsetStart(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	s := &Settings{Window: fiscal.Window{Future: 1, Past: 1}}
	if err := db.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	got, err := db.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if got.FiscalYearStart != fiscal.Default() {
		t.Errorf("FiscalYearStart = %v, want %v", got.FiscalYearStart, fiscal.Default())
	}
}

func TestSaveSettings_Invalid(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		s       Settings
		wantErr error
	}{
		{"february 29", Settings{FiscalYearStart: fiscal.FiscalYearStart{Month: time.February, Day: 29}}, fiscal.ErrInvalidStart},
		{"negative future", Settings{Window: fiscal.Window{Future: -1}}, fiscal.ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.SaveSettings(ctx, &tt.s)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SaveSettings() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := db.GetSettings(ctx); !IsNotFound(err) {
		t.Errorf("invalid settings were stored: %v", err)
	}
}

func TestEnsureSettings(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	defaults := Settings{
		FiscalYearStart: fiscal.FiscalYearStart{Month: time.October, Day: 1},
		Window:          fiscal.Window{Future: 4, Past: 4},
	}

	got, err := db.EnsureSettings(ctx, defaults)
	if err != nil {
		t.Fatalf("EnsureSettings() error = %v", err)
	}
	if got.FiscalYearStart != defaults.FiscalYearStart {
		t.Errorf("seeded FiscalYearStart = %v, want %v", got.FiscalYearStart, defaults.FiscalYearStart)
	}

	// Existing settings win over new defaults
	other := Settings{FiscalYearStart: fiscal.FiscalYearStart{Month: time.April, Day: 6}}
	got, err = db.EnsureSettings(ctx, other)
	if err != nil {
		t.Fatalf("second EnsureSettings() error = %v", err)
	}
	if got.FiscalYearStart != defaults.FiscalYearStart {
		t.Errorf("FiscalYearStart = %v, want unchanged %v", got.FiscalYearStart, defaults.FiscalYearStart)
	}
}

// -----------------------------------------------------------------
// Selection tests
// -----------------------------------------------------------------

func TestSaveSelection(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	sel := &PeriodSelection{Scope: "finance-report", Granularity: fiscal.GranularityQuarter, Value: "2024-07-01"}
	if err := db.SaveSelection(ctx, sel); err != nil {
		t.Fatalf("SaveSelection() error = %v", err)
	}
	if sel.CreatedAt.IsZero() || sel.UpdatedAt.IsZero() {
		t.Error("SaveSelection() did not set timestamps")
	}

	got, err := db.GetSelection(ctx, "finance-report")
	if err != nil {
		t.Fatalf("GetSelection() error = %v", err)
	}
	if got.Value != "2024-07-01" {
		t.Errorf("Value = %q, want %q", got.Value, "2024-07-01")
	}
	if got.Granularity != fiscal.GranularityQuarter {
		t.Errorf("Granularity = %q, want %q", got.Granularity, fiscal.GranularityQuarter)
	}
}

func TestSaveSelection_Upsert(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first := &PeriodSelection{Scope: "budget", Granularity: fiscal.GranularityQuarter, Value: "2024-01-01"}
	if err := db.SaveSelection(ctx, first); err != nil {
		t.Fatalf("SaveSelection() error = %v", err)
	}

	second := &PeriodSelection{Scope: "budget", Granularity: fiscal.GranularityYear, Value: "2023-01-01"}
	if err := db.SaveSelection(ctx, second); err != nil {
		t.Fatalf("second SaveSelection() error = %v", err)
	}

	all, err := db.ListSelections(ctx)
	if err != nil {
		t.Fatalf("ListSelections() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListSelections() len = %d, want 1", len(all))
	}
	if all[0].Value != "2023-01-01" || all[0].Granularity != fiscal.GranularityYear {
		t.Errorf("selection = %+v, want year 2023-01-01", all[0])
	}
}

func TestSaveSelection_Invalid(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		sel  PeriodSelection
	}{
		{"empty scope", PeriodSelection{Scope: " ", Granularity: fiscal.GranularityYear, Value: "2024-01-01"}},
		{"bad granularity", PeriodSelection{Scope: "x", Granularity: "month", Value: "2024-01-01"}},
		{"bad value", PeriodSelection{Scope: "x", Granularity: fiscal.GranularityYear, Value: "01/01/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.SaveSelection(ctx, &tt.sel)
			if !errors.Is(err, ErrInvalidSelection) {
				t.Errorf("SaveSelection() error = %v, want ErrInvalidSelection", err)
			}
		})
	}
}

func TestListSelections_OrderedByScope(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, scope := range []string{"zeta", "alpha", "mid"} {
		sel := &PeriodSelection{Scope: scope, Granularity: fiscal.GranularityYear, Value: "2024-01-01"}
		if err := db.SaveSelection(ctx, sel); err != nil {
			t.Fatalf("SaveSelection(%s) error = %v", scope, err)
		}
	}

	all, err := db.ListSelections(ctx)
	if err != nil {
		t.Fatalf("ListSelections() error = %v", err)
	}

	want := []string{"alpha", "mid", "zeta"}
	if len(all) != len(want) {
		t.Fatalf("ListSelections() len = %d, want %d", len(all), len(want))
	}
	for i, w := range want {
		if all[i].Scope != w {
			t.Errorf("all[%d].Scope = %q, want %q", i, all[i].Scope, w)
		}
	}
}

func TestListSelections_Empty(t *testing.T) {
	db := testDB(t)

	all, err := db.ListSelections(context.Background())
	if err != nil {
		t.Fatalf("ListSelections() error = %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("ListSelections() = %v, want empty non-nil slice", all)
	}
}

func TestDeleteSelection(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	sel := &PeriodSelection{Scope: "budget", Granularity: fiscal.GranularityYear, Value: "2024-01-01"}
	if err := db.SaveSelection(ctx, sel); err != nil {
		t.Fatalf("SaveSelection() error = %v", err)
	}

	if err := db.DeleteSelection(ctx, "budget"); err != nil {
		t.Fatalf("DeleteSelection() error = %v", err)
	}
	if _, err := db.GetSelection(ctx, "budget"); !IsNotFound(err) {
		t.Errorf("GetSelection() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteSelection(ctx, "budget"); !IsNotFound(err) {
		t.Errorf("second DeleteSelection() error = %v, want ErrNotFound", err)
	}
}
