package fiscal

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrInvalidWindow is returned for negative period counts.
	ErrInvalidWindow = errors.New("invalid period window")

	// ErrInvalidGranularity is returned for an unknown granularity.
	ErrInvalidGranularity = errors.New("invalid granularity")
)

// Granularity selects what a period option spans.
type Granularity string

const (
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// ParseGranularity converts a string to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(s)
	if !g.IsValid() {
		return "", fmt.Errorf("%w: %q (want quarter or year)", ErrInvalidGranularity, s)
	}
	return g, nil
}

// IsValid checks if a granularity is known.
func (g Granularity) IsValid() bool {
	return g == GranularityQuarter || g == GranularityYear
}

// Window bounds how many periods to offer around the current one.
// The current period counts towards Future.
type Window struct {
	Future int `json:"future"`
	Past   int `json:"past"`
}

// Validate rejects negative counts. Zero is allowed and yields nothing
// on that side.
func (w Window) Validate() error {
	if w.Future < 0 || w.Past < 0 {
		return fmt.Errorf("%w: future and past must be >= 0, got future=%d past=%d", ErrInvalidWindow, w.Future, w.Past)
	}
	return nil
}

// PeriodOption is one selectable fiscal quarter or fiscal year.
type PeriodOption struct {
	Value      string `json:"value"` // period start, YYYY-MM-DD
	Label      string `json:"label"`
	ShortLabel string `json:"short_label"`
	IsPast     bool   `json:"is_past"`
}

// GeneratePeriodOptions lists the fiscal periods around now, oldest first.
//
// Year mode offers the fiscal years from Past years back to Future-1 years
// ahead of the one containing now. Quarter mode offers Past+Future
// consecutive quarters, the first being Past quarters before the one
// containing now.
//
// A period is past once it has fully elapsed before the start of now's day.
func GeneratePeriodOptions(start FiscalYearStart, now time.Time, window Window, granularity Granularity) ([]PeriodOption, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	today := StartOfDay(now)

	var options []PeriodOption
	switch granularity {
	case GranularityYear:
		options = yearOptions(start, today, window)
	case GranularityQuarter:
		options = quarterOptions(start, today, window)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidGranularity, string(granularity))
	}

	return Dedupe(options), nil
}

// yearOptions anchors on the current fiscal year's start, so stepping
// whole years always lands on a fiscal-year start even when today is
// Feb 29.
func yearOptions(start FiscalYearStart, today time.Time, window Window) []PeriodOption {
	current := ResolveFiscalYear(today, start)

	options := make([]PeriodOption, 0, window.Future+window.Past)
	for i := -window.Past; i < window.Future; i++ {
		fy := ResolveFiscalYear(current.Start.AddDate(i, 0, 0), start)
		options = append(options, PeriodOption{
			Value:      FormatDate(fy.Start),
			Label:      fy.Label,
			ShortLabel: fy.Label,
			IsPast:     fy.Next().Before(today),
		})
	}
	return options
}

func quarterOptions(start FiscalYearStart, today time.Time, window Window) []PeriodOption {
	current := QuarterOf(today, start)
	total := window.Future + window.Past

	options := make([]PeriodOption, 0, total)
	for i := 0; i < total; i++ {
		q := QuarterAt(current, i-window.Past, start)
		options = append(options, PeriodOption{
			Value:      FormatDate(q.Start),
			Label:      q.Label(),
			ShortLabel: q.ShortLabel(),
			IsPast:     q.Next().Before(today),
		})
	}
	return options
}

// Dedupe drops options sharing a Value, keeping the last one seen, and
// sorts the rest by period start. Values that fail to parse sort last in
// their original order.
func Dedupe(options []PeriodOption) []PeriodOption {
	index := make(map[string]int, len(options))
	out := make([]PeriodOption, 0, len(options))
	for _, opt := range options {
		if i, ok := index[opt.Value]; ok {
			out[i] = opt
			continue
		}
		index[opt.Value] = len(out)
		out = append(out, opt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, errA := ParseDate(out[i].Value)
		b, errB := ParseDate(out[j].Value)
		switch {
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return a.Before(b)
	})
	return out
}

// PeriodStart returns the first day of the fiscal quarter or year
// containing date.
func PeriodStart(date time.Time, start FiscalYearStart, granularity Granularity) (time.Time, error) {
	switch granularity {
	case GranularityYear:
		return ResolveFiscalYear(date, start).Start, nil
	case GranularityQuarter:
		return QuarterOf(date, start).Start, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidGranularity, string(granularity))
}
