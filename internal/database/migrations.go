package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1FiscalSettings,
	2: migrationV2PeriodSelections,
}

// migrationV1FiscalSettings stores the organization-wide fiscal policy.
//
// There is exactly one row (id = 1). Months are 1-12.
const migrationV1FiscalSettings = `
CREATE TABLE IF NOT EXISTS fiscal_settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),

    -- First day of every fiscal year
    start_month INTEGER NOT NULL CHECK (start_month BETWEEN 1 AND 12),
    start_day INTEGER NOT NULL CHECK (start_day BETWEEN 1 AND 31),

    -- Default selector window
    future_periods INTEGER NOT NULL DEFAULT 4 CHECK (future_periods >= 0),
    past_periods INTEGER NOT NULL DEFAULT 4 CHECK (past_periods >= 0),

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// migrationV2PeriodSelections stores the period a user picked in a selector.
//
// scope is caller-defined (a form or report name). value is the period's
// start date, the canonical key handed out as PeriodOption.Value.
const migrationV2PeriodSelections = `
CREATE TABLE IF NOT EXISTS period_selections (
    scope TEXT PRIMARY KEY,
    granularity TEXT NOT NULL CHECK (granularity IN ('quarter', 'year')),
    value TEXT NOT NULL,

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_period_selections_value
    ON period_selections(value);
`
