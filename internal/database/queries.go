package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns the zero time if parsing fails.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// Fiscal Settings
// =============================================================================

const selectSettings = `
	SELECT start_month, start_day, future_periods, past_periods, updated_at
	FROM fiscal_settings
	WHERE id = 1
`

// GetSettings returns the stored fiscal settings.
// Returns ErrNotFound if none have been saved yet.
func (db *DB) GetSettings(ctx context.Context) (*Settings, error) {
	return scanSettings(db.QueryRowContext(ctx, selectSettings))
}

func scanSettings(row *sql.Row) (*Settings, error) {
	var s Settings
	var month int
	var updatedAt string

	err := row.Scan(&month, &s.FiscalYearStart.Day, &s.Window.Future, &s.Window.Past, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query fiscal settings: %w", err)
	}

	s.FiscalYearStart.Month = time.Month(month)
	s.UpdatedAt = parseTimestamp(updatedAt)

	return &s, nil
}

// SaveSettings validates and stores the fiscal settings, replacing any
// previous values. An unset start is stored as January 1.
func (db *DB) SaveSettings(ctx context.Context, s *Settings) error {
	return saveSettings(ctx, db, s)
}

// SaveSettings stores the fiscal settings as part of the transaction.
func (tx *Tx) SaveSettings(ctx context.Context, s *Settings) error {
	return saveSettings(ctx, tx, s)
}

func saveSettings(ctx context.Context, q querier, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	start := s.FiscalYearStart.Normalize()

	query := `
		INSERT INTO fiscal_settings (id, start_month, start_day, future_periods, past_periods, updated_at)
		VALUES (1, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			start_month = excluded.start_month,
			start_day = excluded.start_day,
			future_periods = excluded.future_periods,
			past_periods = excluded.past_periods,
			updated_at = datetime('now')
	`

	_, err := q.ExecContext(ctx, query, int(start.Month), start.Day, s.Window.Future, s.Window.Past)
	if err != nil {
		return fmt.Errorf("save fiscal settings: %w", err)
	}

	s.FiscalYearStart = start
	return nil
}

// EnsureSettings stores defaults if no settings exist yet and returns
// whatever is stored afterwards. Existing settings are never overwritten.
func (db *DB) EnsureSettings(ctx context.Context, defaults Settings) (*Settings, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default settings: %w", err)
	}
	start := defaults.FiscalYearStart.Normalize()

	var stored *Settings
	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fiscal_settings (id, start_month, start_day, future_periods, past_periods)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, int(start.Month), start.Day, defaults.Window.Future, defaults.Window.Past)
		if err != nil {
			return fmt.Errorf("seed fiscal settings: %w", err)
		}

		stored, err = scanSettings(tx.QueryRowContext(ctx, selectSettings))
		return err
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// =============================================================================
// Period Selections
// =============================================================================

// validateSelection checks the fields a caller controls.
func validateSelection(sel *PeriodSelection) error {
	var errs []error
	if strings.TrimSpace(sel.Scope) == "" {
		errs = append(errs, errors.New("scope is required"))
	}
	if !sel.Granularity.IsValid() {
		errs = append(errs, fmt.Errorf("granularity %q must be quarter or year", string(sel.Granularity)))
	}
	if _, err := fiscal.ParseDate(sel.Value); err != nil {
		errs = append(errs, fmt.Errorf("value %q must be a YYYY-MM-DD date", sel.Value))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, errors.Join(errs...))
	}
	return nil
}

// SaveSelection inserts or replaces the selection for sel.Scope.
func (db *DB) SaveSelection(ctx context.Context, sel *PeriodSelection) error {
	return saveSelection(ctx, db, sel)
}

// SaveSelection stores sel as part of the transaction.
func (tx *Tx) SaveSelection(ctx context.Context, sel *PeriodSelection) error {
	return saveSelection(ctx, tx, sel)
}

func saveSelection(ctx context.Context, q querier, sel *PeriodSelection) error {
	if err := validateSelection(sel); err != nil {
		return err
	}

	query := `
		INSERT INTO period_selections (scope, granularity, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(scope) DO UPDATE SET
			granularity = excluded.granularity,
			value = excluded.value,
			updated_at = datetime('now')
		RETURNING created_at, updated_at
	`

	var createdAt, updatedAt string
	err := q.QueryRowContext(ctx, query, sel.Scope, string(sel.Granularity), sel.Value).Scan(&createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("save period selection: %w", err)
	}

	sel.CreatedAt = parseTimestamp(createdAt)
	sel.UpdatedAt = parseTimestamp(updatedAt)
	return nil
}

// GetSelection returns the selection saved for scope.
// Returns ErrNotFound if there is none.
func (db *DB) GetSelection(ctx context.Context, scope string) (*PeriodSelection, error) {
	query := `
		SELECT scope, granularity, value, created_at, updated_at
		FROM period_selections
		WHERE scope = ?
	`

	sel, err := scanSelection(db.QueryRowContext(ctx, query, scope))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query period selection: %w", err)
	}
	return sel, nil
}

// ListSelections returns all saved selections ordered by scope.
func (db *DB) ListSelections(ctx context.Context) ([]PeriodSelection, error) {
	query := `
		SELECT scope, granularity, value, created_at, updated_at
		FROM period_selections
		ORDER BY scope ASC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query period selections: %w", err)
	}
	defer rows.Close()

	selections := []PeriodSelection{}
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period selection: %w", err)
		}
		selections = append(selections, *sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period selections: %w", err)
	}

	return selections, nil
}

// DeleteSelection removes the selection for scope.
// Returns ErrNotFound if there is none.
func (db *DB) DeleteSelection(ctx context.Context, scope string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM period_selections WHERE scope = ?`, scope)
	if err != nil {
		return fmt.Errorf("delete period selection: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// querier is satisfied by *DB and *Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSelection(row scanner) (*PeriodSelection, error) {
	var sel PeriodSelection
	var granularity, createdAt, updatedAt string

	if err := row.Scan(&sel.Scope, &granularity, &sel.Value, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	sel.Granularity = fiscal.Granularity(granularity)
	sel.CreatedAt = parseTimestamp(createdAt)
	sel.UpdatedAt = parseTimestamp(updatedAt)
	return &sel, nil
}
