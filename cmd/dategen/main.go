package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

// This tool lists the boundary dates of every quarter in one fiscal year,
// with the fiscal year and quarter each should resolve to, as CSV test
// cases for the API and for spreadsheet cross-checks.

type testDate struct {
	date        time.Time
	expectedFY  string
	expectedQ   int
	description string
}

func main() {
	year := flag.Int("year", time.Now().Year(), "Calendar year the fiscal year starts in")
	month := flag.Int("start-month", 1, "Fiscal year start month (1-12)")
	day := flag.Int("start-day", 1, "Fiscal year start day")
	flag.Parse()

	start, err := fiscal.NewFiscalYearStart(time.Month(*month), *day)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	generate(os.Stdout, *year, start)
}

func generate(w io.Writer, year int, start fiscal.FiscalYearStart) {
	first := time.Date(year, start.Month, start.Day, 0, 0, 0, 0, time.UTC)
	fy := fiscal.ResolveFiscalYear(first, start)

	fmt.Fprintf(w, "=== Fiscal Date Generator for %s (starts %s) ===\n\n", fy.Label, start)

	// Key dates
	fmt.Fprintln(w, "Key Dates:")
	fmt.Fprintf(w, "  Fiscal Year Start: %s\n", fiscal.FormatDate(fy.Start))
	fmt.Fprintf(w, "  Fiscal Year End:   %s\n", fiscal.FormatDate(fy.End))
	fmt.Fprintf(w, "  Next Year Start:   %s\n", fiscal.FormatDate(fy.Next()))
	fmt.Fprintln(w)

	dates := boundaryDates(fy, start)

	// Group by quarter for summary
	counts := make(map[int]int)
	for _, d := range dates {
		if d.expectedFY == fy.Label {
			counts[d.expectedQ]++
		}
	}

	fmt.Fprintln(w, "Test dates by quarter:")
	for q := 1; q <= 4; q++ {
		fmt.Fprintf(w, "  Q%-14d %d dates\n", q, counts[q])
	}
	fmt.Fprintf(w, "  %-15s %d dates\n", "TOTAL:", len(dates))
	fmt.Fprintln(w)

	// Output all dates as test cases
	fmt.Fprintln(w, "=== All Test Dates ===")
	fmt.Fprintln(w, "Date,Expected Fiscal Year,Expected Quarter,Description")
	for _, d := range dates {
		fmt.Fprintf(w, "%s,%s,%d,%s\n", fiscal.FormatDate(d.date), d.expectedFY, d.expectedQ, d.description)
	}
}

// boundaryDates returns the first and last day of each quarter in fy, plus
// the days either side of the fiscal year, sorted by date.
func boundaryDates(fy fiscal.FiscalYear, start fiscal.FiscalYearStart) []testDate {
	var dates []testDate

	add := func(d time.Time, description string) {
		q := fiscal.QuarterOf(d, start)
		dates = append(dates, testDate{d, q.FiscalYear.Label, q.Number, description})
	}

	add(fy.Start.AddDate(0, 0, -1), "Day before fiscal year")

	q1 := fiscal.QuarterOf(fy.Start, start)
	for i := 0; i < fiscal.QuartersPerYear; i++ {
		q := fiscal.QuarterAt(q1, i, start)
		add(q.Start, fmt.Sprintf("First day of %s", ordinal(q.Number)+" quarter"))
		add(q.End, fmt.Sprintf("Last day of %s", ordinal(q.Number)+" quarter"))
	}

	add(fy.Next(), "First day of next fiscal year")

	// Feb 29 inside the fiscal year, when there is one
	for y := fy.Start.Year(); y <= fy.End.Year(); y++ {
		leap := time.Date(y, time.February, 29, 0, 0, 0, 0, time.UTC)
		if leap.Month() == time.February && fy.Contains(leap) {
			add(leap, "Leap day")
		}
	}

	// Sort by date
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].date.Before(dates[j].date)
	})

	return dates
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 10 {
	case 1:
		if n%100 != 11 {
			suffix = "st"
		}
	case 2:
		if n%100 != 12 {
			suffix = "nd"
		}
	case 3:
		if n%100 != 13 {
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
