package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(options []PeriodOption) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return out
}

func TestGeneratePeriodOptions_QuarterCalendarYear(t *testing.T) {
	now := date(2024, time.July, 15)

	options, err := GeneratePeriodOptions(FiscalYearStart{}, now, Window{Future: 2, Past: 2}, GranularityQuarter)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-01", "2024-04-01", "2024-07-01", "2024-10-01"}, values(options))

	assert.Equal(t, PeriodOption{
		Value:      "2024-07-01",
		Label:      "Q3 FY 2024 (1 Jul - 30 Sep 2024)",
		ShortLabel: "Q3 FY 2024",
		IsPast:     false,
	}, options[2])

	assert.Equal(t, "Q1 FY 2024", options[0].ShortLabel)
	assert.Equal(t, "Q4 FY 2024 (1 Oct - 31 Dec 2024)", options[3].Label)

	assert.True(t, options[0].IsPast)
	assert.True(t, options[1].IsPast)
	assert.False(t, options[3].IsPast)
}

func TestGeneratePeriodOptions_QuarterCrossesFiscalYear(t *testing.T) {
	start := FiscalYearStart{Month: time.April, Day: 6}
	now := date(2024, time.May, 1)

	options, err := GeneratePeriodOptions(start, now, Window{Future: 2, Past: 2}, GranularityQuarter)
	require.NoError(t, err)
	require.Len(t, options, 4)

	want := []struct {
		value, short, label string
		past                bool
	}{
		{"2023-10-06", "Q3 FY 23/24", "Q3 FY 23/24 (6 Oct - 5 Jan 2024)", true},
		{"2024-01-06", "Q4 FY 23/24", "Q4 FY 23/24 (6 Jan - 5 Apr 2024)", true},
		{"2024-04-06", "Q1 FY 24/25", "Q1 FY 24/25 (6 Apr - 5 Jul 2024)", false},
		{"2024-07-06", "Q2 FY 24/25", "Q2 FY 24/25 (6 Jul - 5 Oct 2024)", false},
	}
	for i, w := range want {
		assert.Equal(t, w.value, options[i].Value, "option %d value", i)
		assert.Equal(t, w.short, options[i].ShortLabel, "option %d short label", i)
		assert.Equal(t, w.label, options[i].Label, "option %d label", i)
		assert.Equal(t, w.past, options[i].IsPast, "option %d past", i)
	}
}

func TestGeneratePeriodOptions_QuarterNumberWrapsYearEnd(t *testing.T) {
	start := FiscalYearStart{Month: time.October, Day: 1}
	now := date(2025, time.January, 15)

	options, err := GeneratePeriodOptions(start, now, Window{Future: 1}, GranularityQuarter)
	require.NoError(t, err)
	require.Len(t, options, 1)

	assert.Equal(t, "2025-01-01", options[0].Value)
	assert.Equal(t, "Q2 FY 24/25", options[0].ShortLabel)
}

func TestGeneratePeriodOptions_Years(t *testing.T) {
	now := date(2024, time.July, 15)

	options, err := GeneratePeriodOptions(FiscalYearStart{}, now, Window{Future: 2, Past: 3}, GranularityYear)
	require.NoError(t, err)

	assert.Equal(t, []string{"2021-01-01", "2022-01-01", "2023-01-01", "2024-01-01", "2025-01-01"}, values(options))

	byValue := make(map[string]PeriodOption)
	for _, o := range options {
		byValue[o.Value] = o
		assert.Equal(t, o.Label, o.ShortLabel)
	}

	assert.True(t, byValue["2022-01-01"].IsPast, "FY 2022 has fully elapsed")
	assert.False(t, byValue["2024-01-01"].IsPast, "FY 2024 contains now")
	assert.False(t, byValue["2025-01-01"].IsPast)
	assert.Equal(t, "FY 2022", byValue["2022-01-01"].Label)
}

func TestGeneratePeriodOptions_YearsCustomStart(t *testing.T) {
	start := FiscalYearStart{Month: time.April, Day: 6}
	now := date(2025, time.February, 1)

	options, err := GeneratePeriodOptions(start, now, Window{Future: 1, Past: 1}, GranularityYear)
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-04-06", "2024-04-06"}, values(options))
	assert.Equal(t, "FY 23/24", options[0].Label)
	assert.Equal(t, "FY 24/25", options[1].Label)
}

func TestGeneratePeriodOptions_YearsFromLeapDay(t *testing.T) {
	start := FiscalYearStart{Month: time.March, Day: 1}
	now := date(2024, time.February, 29)

	options, err := GeneratePeriodOptions(start, now, Window{Future: 2, Past: 1}, GranularityYear)
	require.NoError(t, err)

	assert.Equal(t, []string{"2022-03-01", "2023-03-01", "2024-03-01"}, values(options))
}

func TestGeneratePeriodOptions_PastNeedsExclusiveEndBeforeToday(t *testing.T) {
	window := Window{Past: 1}

	onBoundary, err := GeneratePeriodOptions(FiscalYearStart{}, date(2025, time.January, 1), window, GranularityYear)
	require.NoError(t, err)
	require.Len(t, onBoundary, 1)
	assert.Equal(t, "2024-01-01", onBoundary[0].Value)
	assert.False(t, onBoundary[0].IsPast)

	dayAfter, err := GeneratePeriodOptions(FiscalYearStart{}, date(2025, time.January, 2), window, GranularityYear)
	require.NoError(t, err)
	require.Len(t, dayAfter, 1)
	assert.True(t, dayAfter[0].IsPast)
}

func TestGeneratePeriodOptions_EmptyWindow(t *testing.T) {
	for _, g := range []Granularity{GranularityQuarter, GranularityYear} {
		options, err := GeneratePeriodOptions(FiscalYearStart{}, date(2024, time.July, 15), Window{}, g)
		require.NoError(t, err)
		assert.Empty(t, options)
	}
}

func TestGeneratePeriodOptions_Errors(t *testing.T) {
	now := date(2024, time.July, 15)

	_, err := GeneratePeriodOptions(FiscalYearStart{}, now, Window{Future: -1, Past: 2}, GranularityQuarter)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = GeneratePeriodOptions(FiscalYearStart{}, now, Window{Future: 1, Past: -2}, GranularityYear)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = GeneratePeriodOptions(FiscalYearStart{Month: time.February, Day: 29}, now, Window{Future: 1}, GranularityYear)
	assert.ErrorIs(t, err, ErrInvalidStart)

	_, err = GeneratePeriodOptions(FiscalYearStart{}, now, Window{Future: 1}, Granularity("month"))
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestGeneratePeriodOptions_Properties(t *testing.T) {
	starts := []FiscalYearStart{
		{},
		{Month: time.February, Day: 28},
		{Month: time.April, Day: 6},
		{Month: time.July, Day: 1},
		{Month: time.August, Day: 31},
		{Month: time.November, Day: 30},
		{Month: time.December, Day: 31},
		{Month: time.January, Day: 31},
	}
	windows := []Window{{Future: 4, Past: 4}, {Future: 0, Past: 9}, {Future: 7, Past: 1}}

	for _, s := range starts {
		for _, w := range windows {
			for _, g := range []Granularity{GranularityQuarter, GranularityYear} {
				for now := date(2023, time.December, 1); now.Before(date(2024, time.April, 1)); now = now.AddDate(0, 0, 3) {
					options, err := GeneratePeriodOptions(s, now, w, g)
					require.NoError(t, err)

					if len(options) > w.Future+w.Past {
						t.Fatalf("%s %s %+v: %d options, more than window", s, g, w, len(options))
					}

					seen := make(map[string]bool)
					var prev time.Time
					for i, o := range options {
						if seen[o.Value] {
							t.Fatalf("%s %s %+v now=%s: duplicate value %s", s, g, w, FormatDate(now), o.Value)
						}
						seen[o.Value] = true

						d, err := ParseDate(o.Value)
						require.NoError(t, err)
						if i > 0 && d.Before(prev) {
							t.Fatalf("%s %s %+v now=%s: %s sorts after %s", s, g, w, FormatDate(now), o.Value, FormatDate(prev))
						}
						if g == GranularityQuarter {
							q := QuarterOf(d, s)
							if !q.Start.Equal(d) {
								t.Fatalf("%s now=%s: %s is not a quarter start (quarter starts %s)", s, FormatDate(now), o.Value, FormatDate(q.Start))
							}
							if i > 0 && !QuarterOf(prev, s).Next().Equal(d) {
								t.Fatalf("%s now=%s: gap or overlap between %s and %s", s, FormatDate(now), FormatDate(prev), o.Value)
							}
						}
						prev = d
					}
				}
			}
		}
	}
}

func TestGeneratePeriodOptions_MonthEndStart(t *testing.T) {
	start := FiscalYearStart{Month: time.August, Day: 31}
	now := date(2025, time.March, 1)

	options, err := GeneratePeriodOptions(start, now, Window{Future: 2, Past: 2}, GranularityQuarter)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-08-31", "2024-11-30", "2025-02-28", "2025-05-31"}, values(options))
	assert.Equal(t, "Q3 FY 24/25 (28 Feb - 30 May 2025)", options[2].Label)
	assert.Equal(t, "Q4 FY 24/25 (31 May - 30 Aug 2025)", options[3].Label)
	assert.Equal(t, []bool{true, true, false, false}, []bool{options[0].IsPast, options[1].IsPast, options[2].IsPast, options[3].IsPast})
}

func TestGeneratePeriodOptions_IncludesCurrentPeriod(t *testing.T) {
	start := FiscalYearStart{Month: time.April, Day: 6}
	now := date(2024, time.November, 20)

	options, err := GeneratePeriodOptions(start, now, Window{Future: 1, Past: 3}, GranularityQuarter)
	require.NoError(t, err)

	current := QuarterOf(now, start)
	last := options[len(options)-1]
	assert.Equal(t, FormatDate(current.Start), last.Value)
	assert.False(t, last.IsPast)
}

func TestDedupe_LastWins(t *testing.T) {
	in := []PeriodOption{
		{Value: "2024-04-01", Label: "first"},
		{Value: "2024-01-01", Label: "january"},
		{Value: "2024-04-01", Label: "second"},
	}

	out := Dedupe(in)

	require.Len(t, out, 2)
	assert.Equal(t, "2024-01-01", out[0].Value)
	assert.Equal(t, "2024-04-01", out[1].Value)
	assert.Equal(t, "second", out[1].Label)
}

func TestDedupe_UnparseableValuesSortLast(t *testing.T) {
	out := Dedupe([]PeriodOption{
		{Value: "not-a-date"},
		{Value: "2024-07-01"},
		{Value: "2024-01-01"},
	})

	assert.Equal(t, []string{"2024-01-01", "2024-07-01", "not-a-date"}, values(out))
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("quarter")
	require.NoError(t, err)
	assert.Equal(t, GranularityQuarter, g)

	g, err = ParseGranularity("year")
	require.NoError(t, err)
	assert.Equal(t, GranularityYear, g)

	_, err = ParseGranularity("week")
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestPeriodStart(t *testing.T) {
	start := FiscalYearStart{Month: time.April, Day: 6}

	tests := []struct {
		name        string
		date        time.Time
		granularity Granularity
		want        time.Time
	}{
		{"quarter mid", date(2024, time.August, 15), GranularityQuarter, date(2024, time.July, 6)},
		{"quarter first day", date(2024, time.October, 6), GranularityQuarter, date(2024, time.October, 6)},
		{"quarter before fiscal year", date(2024, time.April, 5), GranularityQuarter, date(2024, time.January, 6)},
		{"year", date(2025, time.February, 1), GranularityYear, date(2024, time.April, 6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeriodStart(tt.date, start, tt.granularity)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", FormatDate(got), FormatDate(tt.want))
		})
	}

	_, err := PeriodStart(date(2024, time.August, 15), start, "month")
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestPeriodStart_MonthEndStart(t *testing.T) {
	start := FiscalYearStart{Month: time.August, Day: 31}

	got, err := PeriodStart(date(2025, time.March, 1), start, GranularityQuarter)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", FormatDate(got))

	got, err = PeriodStart(date(2025, time.March, 3), start, GranularityQuarter)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", FormatDate(got))
}
