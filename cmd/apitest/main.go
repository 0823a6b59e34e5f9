// Command apitest runs a smoke test suite against a running fiscal period API.
//
// Expected values are computed locally with the fiscal package from the
// settings the server reports, so the suite passes for any configured
// fiscal year start.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type SettingsResponse struct {
	FiscalYearStart fiscal.FiscalYearStart `json:"fiscal_year_start"`
	Window          fiscal.Window          `json:"window"`
}

type FiscalYearResponse struct {
	Date       string `json:"date"`
	FiscalYear struct {
		Label string `json:"label"`
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"fiscal_year"`
	Quarter struct {
		Number int    `json:"number"`
		Start  string `json:"start"`
	} `json:"quarter"`
}

type PeriodsResponse struct {
	Options []fiscal.PeriodOption `json:"options"`
}

type SelectionResponse struct {
	Scope       string `json:"scope"`
	Granularity string `json:"granularity"`
	Value       string `json:"value"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	out          io.Writer
	verbose      bool
	successCount int
	errorCount   int
	errors       []string

	start fiscal.FiscalYearStart
}

func NewTestRunner(baseURL, apiKey string, out io.Writer, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		out:     out,
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Fiscal Period API Test Suite")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "Base URL: %s\n", tr.baseURL)

	tr.testHealth()
	if !tr.testSettings() {
		tr.printSummary()
		return
	}
	tr.testFiscalYears()
	tr.testPeriods()
	tr.testSelections()
	tr.testEdgeCases()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getData("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess("Health check passed")
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

// testSettings loads the server's fiscal settings; later groups depend on them.
func (tr *TestRunner) testSettings() bool {
	tr.printSection("Settings")

	var settings SettingsResponse
	if err := tr.getData("/api/v1/settings", &settings); err != nil {
		tr.recordError("Settings", err.Error())
		return false
	}

	if err := settings.FiscalYearStart.Validate(); err != nil {
		tr.recordError("Settings", err.Error())
		return false
	}

	tr.start = settings.FiscalYearStart
	tr.recordSuccess(fmt.Sprintf("Fiscal year starts %s, window %d past / %d future",
		tr.start, settings.Window.Past, settings.Window.Future))
	return true
}

func (tr *TestRunner) testFiscalYears() {
	tr.printSection("Fiscal Year Resolution")

	dates := []string{
		"2024-01-01", "2024-02-29", "2024-04-05", "2024-04-06",
		"2024-07-01", "2024-09-30", "2024-10-01", "2024-12-31", "2025-02-01",
	}

	for _, d := range dates {
		date, _ := fiscal.ParseDate(d)
		want := fiscal.ResolveFiscalYear(date, tr.start)
		wantQ := fiscal.QuarterOf(date, tr.start)

		var got FiscalYearResponse
		if err := tr.getData("/api/v1/fiscal-year?date="+d, &got); err != nil {
			tr.recordError(d, err.Error())
			continue
		}

		switch {
		case got.FiscalYear.Label != want.Label:
			tr.recordError(d, fmt.Sprintf("Expected %s, got %s", want.Label, got.FiscalYear.Label))
		case got.FiscalYear.Start != fiscal.FormatDate(want.Start):
			tr.recordError(d, fmt.Sprintf("Expected start %s, got %s", fiscal.FormatDate(want.Start), got.FiscalYear.Start))
		case got.Quarter.Number != wantQ.Number:
			tr.recordError(d, fmt.Sprintf("Expected Q%d, got Q%d", wantQ.Number, got.Quarter.Number))
		default:
			tr.recordSuccess(fmt.Sprintf("%s: %s Q%d (%s to %s)",
				d, got.FiscalYear.Label, got.Quarter.Number, got.FiscalYear.Start, got.FiscalYear.End))
		}
	}
}

func (tr *TestRunner) testPeriods() {
	tr.printSection("Period Options")

	const date = "2024-08-15"
	now, _ := fiscal.ParseDate(date)

	for _, g := range []fiscal.Granularity{fiscal.GranularityQuarter, fiscal.GranularityYear} {
		window := fiscal.Window{Future: 3, Past: 2}
		want, err := fiscal.GeneratePeriodOptions(tr.start, now, window, g)
		if err != nil {
			tr.recordError(string(g), err.Error())
			continue
		}

		var got PeriodsResponse
		path := fmt.Sprintf("/api/v1/periods?granularity=%s&date=%s&future=%d&past=%d", g, date, window.Future, window.Past)
		if err := tr.getData(path, &got); err != nil {
			tr.recordError(string(g), err.Error())
			continue
		}

		if len(got.Options) != len(want) {
			tr.recordError(string(g), fmt.Sprintf("Expected %d options, got %d", len(want), len(got.Options)))
			continue
		}

		ok := true
		for i := range want {
			if got.Options[i] != want[i] {
				tr.recordError(string(g), fmt.Sprintf("Option %d: expected %+v, got %+v", i, want[i], got.Options[i]))
				ok = false
				break
			}
		}
		if ok {
			tr.recordSuccess(fmt.Sprintf("%s options around %s: %s .. %s",
				g, date, got.Options[0].ShortLabel, got.Options[len(got.Options)-1].ShortLabel))
		}

		if tr.verbose {
			for _, o := range got.Options {
				fmt.Fprintf(tr.out, "    %s  %-40s past=%v\n", o.Value, o.Label, o.IsPast)
			}
		}
	}

	var empty PeriodsResponse
	if err := tr.getData("/api/v1/periods?future=0&past=0", &empty); err != nil {
		tr.recordError("Empty window", err.Error())
	} else if len(empty.Options) != 0 {
		tr.recordError("Empty window", fmt.Sprintf("Expected no options, got %d", len(empty.Options)))
	} else {
		tr.recordSuccess("Empty window returns no options")
	}
}

func (tr *TestRunner) testSelections() {
	tr.printSection("Saved Selections")

	scope := "apitest-" + uuid.NewString()
	value := fiscal.FormatDate(fiscal.QuarterOf(time.Now(), tr.start).Start)

	body := map[string]string{"granularity": string(fiscal.GranularityQuarter), "value": value}
	var saved SelectionResponse
	if err := tr.doData(http.MethodPut, "/api/v1/selections/"+scope, body, &saved); err != nil {
		tr.recordError("Save selection", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Saved %s = %s", scope, saved.Value))

	var got SelectionResponse
	if err := tr.getData("/api/v1/selections/"+scope, &got); err != nil {
		tr.recordError("Get selection", err.Error())
	} else if got.Value != value {
		tr.recordError("Get selection", fmt.Sprintf("Expected %s, got %s", value, got.Value))
	} else {
		tr.recordSuccess("Selection read back")
	}

	if err := tr.doData(http.MethodDelete, "/api/v1/selections/"+scope, nil, nil); err != nil {
		tr.recordError("Delete selection", err.Error())
	} else {
		tr.recordSuccess("Selection deleted")
	}

	tr.expectStatus("Deleted selection is gone", http.MethodGet, "/api/v1/selections/"+scope, nil, http.StatusNotFound)
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	tr.expectStatus("Invalid date format rejected", http.MethodGet, "/api/v1/fiscal-year?date=2024/08/15", nil, http.StatusBadRequest)
	tr.expectStatus("Unknown granularity rejected", http.MethodGet, "/api/v1/periods?granularity=month", nil, http.StatusBadRequest)
	tr.expectStatus("Negative window rejected", http.MethodGet, "/api/v1/periods?past=-1", nil, http.StatusBadRequest)
	tr.expectStatus("Non-integer window rejected", http.MethodGet, "/api/v1/periods?future=two", nil, http.StatusBadRequest)

	misaligned := map[string]string{"granularity": "year", "value": "2024-02-29"}
	tr.expectStatus("Misaligned selection rejected", http.MethodPut, "/api/v1/selections/apitest-misaligned", misaligned, http.StatusBadRequest)
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) getData(path string, target interface{}) error {
	return tr.doData(http.MethodGet, path, nil, target)
}

// doData sends a request and decodes the envelope's data into target.
func (tr *TestRunner) doData(method, path string, body, target interface{}) error {
	resp, err := tr.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("parse error (HTTP %d): %w", resp.StatusCode, err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, errMsg)
	}

	if target == nil {
		return nil
	}
	return json.Unmarshal(apiResp.Data, target)
}

func (tr *TestRunner) do(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, tr.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}
	return tr.client.Do(req)
}

func (tr *TestRunner) expectStatus(name, method, path string, body interface{}, want int) {
	resp, err := tr.do(method, path, body)
	if err != nil {
		tr.recordError(name, err.Error())
		return
	}
	resp.Body.Close()

	if resp.StatusCode == want {
		tr.recordSuccess(name)
	} else {
		tr.recordError(name, fmt.Sprintf("Expected HTTP %d, got %d", want, resp.StatusCode))
	}
}

func (tr *TestRunner) printSection(name string) {
	fmt.Fprintln(tr.out)
	fmt.Fprintf(tr.out, "--- %s ---\n", name)
	fmt.Fprintln(tr.out)
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Fprintf(tr.out, "  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Fprintf(tr.out, "  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Fprintln(tr.out)
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Summary")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "  Passed: %d\n", tr.successCount)
	fmt.Fprintf(tr.out, "  Failed: %d\n", tr.errorCount)
	fmt.Fprintln(tr.out)

	if tr.errorCount > 0 {
		fmt.Fprintln(tr.out, "Failures:")
		for _, err := range tr.errors {
			fmt.Fprintf(tr.out, "  • %s\n", err)
		}
		fmt.Fprintln(tr.out)
		fmt.Fprintf(tr.out, "Tests completed with %d failure(s)\n", tr.errorCount)
		return
	}

	fmt.Fprintln(tr.out, "All tests passed! ✓")
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key for /api/v1 endpoints")
	verbose := flag.Bool("v", false, "Verbose output (show every option)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, os.Stdout, *verbose)
	runner.Run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
