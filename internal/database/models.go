package database

import (
	"time"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

// Settings is the organization-wide fiscal policy.
type Settings struct {
	FiscalYearStart fiscal.FiscalYearStart `json:"fiscal_year_start"`
	Window          fiscal.Window          `json:"window"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// Validate checks the fiscal start and the default window.
func (s Settings) Validate() error {
	if err := s.FiscalYearStart.Validate(); err != nil {
		return err
	}
	return s.Window.Validate()
}

// PeriodSelection is the period a user chose in a selector, keyed by scope.
type PeriodSelection struct {
	Scope       string             `json:"scope"`
	Granularity fiscal.Granularity `json:"granularity"`
	Value       string             `json:"value"` // period start, YYYY-MM-DD
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ImportData is the JSON document read by the import command.
type ImportData struct {
	Settings   *Settings         `json:"settings,omitempty"`
	Selections []PeriodSelection `json:"selections"`
}
