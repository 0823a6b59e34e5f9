package fiscal

import (
	"fmt"
	"time"
)

const (
	// MonthsPerQuarter is the length of a fiscal quarter.
	MonthsPerQuarter = 3

	// QuartersPerYear is the number of quarters in a fiscal year.
	QuartersPerYear = 4
)

// Quarter is one fiscal quarter.
type Quarter struct {
	Number     int        `json:"number"` // 1-4 within its fiscal year
	FiscalYear FiscalYear `json:"fiscal_year"`
	Start      time.Time  `json:"start"` // first day
	End        time.Time  `json:"end"`   // last day
}

// Next returns the first day of the following quarter.
func (q Quarter) Next() time.Time {
	return q.End.AddDate(0, 0, 1)
}

// ShortLabel is the compact label, e.g. "Q2 FY 24/25".
func (q Quarter) ShortLabel() string {
	return fmt.Sprintf("Q%d %s", q.Number, q.FiscalYear.Label)
}

// Label is the display label including the date range,
// e.g. "Q2 FY 24/25 (6 Jul - 5 Oct 2024)".
func (q Quarter) Label() string {
	return fmt.Sprintf("%s (%s - %s)", q.ShortLabel(), q.Start.Format("2 Jan"), q.End.Format("2 Jan 2006"))
}

// QuarterOf returns the fiscal quarter containing date.
func QuarterOf(date time.Time, start FiscalYearStart) Quarter {
	day := StartOfDay(date)
	fy := ResolveFiscalYear(day, start)

	n := QuartersPerYear
	for n > 1 && day.Before(quarterStart(fy, n)) {
		n--
	}
	return quarterIn(fy, n)
}

// QuarterAt returns the quarter offset quarters away from q, crossing
// fiscal-year boundaries as needed. Offset 0 is q itself.
func QuarterAt(q Quarter, offset int, start FiscalYearStart) Quarter {
	slot := q.Number - 1 + offset
	years := slot / QuartersPerYear
	if slot%QuartersPerYear < 0 {
		years--
	}

	fy := q.FiscalYear
	if years != 0 {
		fy = ResolveFiscalYear(fy.Start.AddDate(years, 0, 0), start)
	}
	return quarterIn(fy, slot-years*QuartersPerYear+1)
}

// quarterIn builds quarter n (1-4) of fy. Quarters are offset from the
// fiscal-year start, never from each other, and each ends the day before
// the next begins, so the four of them tile fy exactly.
func quarterIn(fy FiscalYear, n int) Quarter {
	next := fy.Next()
	if n < QuartersPerYear {
		next = quarterStart(fy, n+1)
	}
	return Quarter{
		Number:     n,
		FiscalYear: fy,
		Start:      quarterStart(fy, n),
		End:        next.AddDate(0, 0, -1),
	}
}

func quarterStart(fy FiscalYear, n int) time.Time {
	return addMonths(fy.Start, (n-1)*MonthsPerQuarter)
}
