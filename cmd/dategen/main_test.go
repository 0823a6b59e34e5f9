package main

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

func TestBoundaryDates_CalendarYear(t *testing.T) {
	start := fiscal.Default()
	fy := fiscal.ResolveFiscalYear(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), start)

	dates := boundaryDates(fy, start)
	require.Len(t, dates, 11) // 8 quarter edges, 2 outside the year, Feb 29

	first := dates[0]
	assert.Equal(t, "2023-12-31", fiscal.FormatDate(first.date))
	assert.Equal(t, "FY 2023", first.expectedFY)
	assert.Equal(t, 4, first.expectedQ)

	assert.Equal(t, "2024-01-01", fiscal.FormatDate(dates[1].date))
	assert.Equal(t, 1, dates[1].expectedQ)
	assert.Equal(t, "2024-02-29", fiscal.FormatDate(dates[2].date))
	assert.Equal(t, "Leap day", dates[2].description)
	assert.Equal(t, "2024-03-31", fiscal.FormatDate(dates[3].date))
	assert.Equal(t, "2024-12-31", fiscal.FormatDate(dates[9].date))
	assert.Equal(t, 4, dates[9].expectedQ)
	assert.Equal(t, "2025-01-01", fiscal.FormatDate(dates[10].date))
	assert.Equal(t, "FY 2025", dates[10].expectedFY)
}

func TestBoundaryDates_NoLeapDay(t *testing.T) {
	start := fiscal.FiscalYearStart{Month: time.April, Day: 6}
	fy := fiscal.ResolveFiscalYear(time.Date(2024, time.April, 6, 0, 0, 0, 0, time.UTC), start)

	dates := boundaryDates(fy, start)
	require.Len(t, dates, 10)

	for _, d := range dates {
		assert.NotEqual(t, "Leap day", d.description)
	}
}

func TestBoundaryDates_MonthEndStart(t *testing.T) {
	start := fiscal.FiscalYearStart{Month: time.August, Day: 31}
	fy := fiscal.ResolveFiscalYear(time.Date(2024, time.August, 31, 0, 0, 0, 0, time.UTC), start)

	dates := boundaryDates(fy, start)
	require.Len(t, dates, 10)

	var got []string
	for _, d := range dates[1:9] {
		got = append(got, fmt.Sprintf("%s Q%d", fiscal.FormatDate(d.date), d.expectedQ))
	}
	assert.Equal(t, []string{
		"2024-08-31 Q1", "2024-11-29 Q1",
		"2024-11-30 Q2", "2025-02-27 Q2",
		"2025-02-28 Q3", "2025-05-30 Q3",
		"2025-05-31 Q4", "2025-08-30 Q4",
	}, got)

	for _, d := range dates[1:9] {
		assert.Equal(t, "FY 24/25", d.expectedFY, fiscal.FormatDate(d.date))
	}
}

func TestGenerate(t *testing.T) {
	var out bytes.Buffer
	generate(&out, 2024, fiscal.FiscalYearStart{Month: time.July, Day: 1})

	s := out.String()
	assert.Contains(t, s, "FY 24/25")
	assert.Contains(t, s, "Fiscal Year End:   2025-06-30")
	assert.Contains(t, s, "2024-07-01,FY 24/25,1,First day of 1st quarter")
	assert.Contains(t, s, "2025-06-30,FY 24/25,4,Last day of 4th quarter")
	assert.Contains(t, s, "2024-06-30,FY 23/24,4,Day before fiscal year")
	assert.NotContains(t, s, "Leap day")
}
