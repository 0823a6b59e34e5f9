// Package fiscal provides financial year and quarter calculations.
//
// Everything here is a pure function of its arguments: the fiscal-year
// start policy and the reference date are always passed in, never read
// from globals or the wall clock.
package fiscal

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidStart is returned when a fiscal-year start month/day is not a
// date that exists in every year.
var ErrInvalidStart = errors.New("invalid fiscal year start")

// FiscalYearStart is the organization-wide month and day on which every
// fiscal year begins.
//
// The zero value means "not configured" and behaves as January 1, i.e. the
// fiscal year is the calendar year.
type FiscalYearStart struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// Default returns the calendar-year start (January 1).
func Default() FiscalYearStart {
	return FiscalYearStart{Month: time.January, Day: 1}
}

// NewFiscalYearStart returns a validated start.
func NewFiscalYearStart(month time.Month, day int) (FiscalYearStart, error) {
	s := FiscalYearStart{Month: month, Day: day}
	if err := s.Validate(); err != nil {
		return FiscalYearStart{}, err
	}
	return s, nil
}

// IsZero reports whether the start is unset.
func (s FiscalYearStart) IsZero() bool {
	return s.Month == 0 && s.Day == 0
}

// Normalize returns Default() for an unset start and s otherwise.
func (s FiscalYearStart) Normalize() FiscalYearStart {
	if s.IsZero() {
		return Default()
	}
	return s
}

// Validate checks that the start falls on a day present in every year.
//
// February 29 is rejected: a fiscal year starting on it would have no
// start date three years out of four.
func (s FiscalYearStart) Validate() error {
	if s.IsZero() {
		return nil
	}
	if s.Month < time.January || s.Month > time.December {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalidStart, int(s.Month))
	}
	if last := daysIn(s.Month); s.Day < 1 || s.Day > last {
		return fmt.Errorf("%w: day for %s must be between 1 and %d, got %d", ErrInvalidStart, s.Month, last, s.Day)
	}
	return nil
}

func (s FiscalYearStart) String() string {
	n := s.Normalize()
	return fmt.Sprintf("%d %s", n.Day, n.Month)
}

// in returns the start date in the given calendar year.
func (s FiscalYearStart) in(year int, loc *time.Location) time.Time {
	return time.Date(year, s.Month, s.Day, 0, 0, 0, 0, loc)
}

// daysIn returns the number of days in month for a non-leap year.
func daysIn(month time.Month) int {
	return time.Date(2023, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FiscalYear is the fiscal year containing some date.
type FiscalYear struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"` // first day
	End   time.Time `json:"end"`   // last day
}

// Next returns the first day of the following fiscal year (exclusive end).
func (fy FiscalYear) Next() time.Time {
	return fy.Start.AddDate(1, 0, 0)
}

// Contains reports whether date falls within the fiscal year.
func (fy FiscalYear) Contains(date time.Time) bool {
	d := StartOfDay(date)
	return !d.Before(fy.Start) && d.Before(fy.Next())
}

// ResolveFiscalYear returns the fiscal year containing target.
//
// The candidate start is the configured month/day in target's calendar
// year. If target falls before it, the fiscal year began the previous
// calendar year.
//
// Examples (start April 6):
//   - 2025-02-01 -> starts 2024-04-06, "FY 24/25"
//   - 2024-04-06 -> starts 2024-04-06, "FY 24/25"
//   - 2024-04-05 -> starts 2023-04-06, "FY 23/24"
//
// With the default start every fiscal year is a calendar year, labeled
// "FY 2024".
func ResolveFiscalYear(target time.Time, start FiscalYearStart) FiscalYear {
	s := start.Normalize()
	day := StartOfDay(target)

	candidate := s.in(day.Year(), day.Location())
	if day.Before(candidate) {
		candidate = candidate.AddDate(-1, 0, 0)
	}

	return fiscalYearFrom(candidate)
}

// fiscalYearFrom builds the fiscal year beginning on start.
func fiscalYearFrom(start time.Time) FiscalYear {
	end := start.AddDate(1, 0, -1)
	return FiscalYear{
		Label: yearLabel(start, end),
		Start: start,
		End:   end,
	}
}

// yearLabel is "FY 2024" for a calendar-aligned year, "FY 24/25" otherwise.
func yearLabel(start, end time.Time) string {
	if start.Year() == end.Year() {
		return fmt.Sprintf("FY %d", start.Year())
	}
	return fmt.Sprintf("FY %02d/%02d", start.Year()%100, end.Year()%100)
}
