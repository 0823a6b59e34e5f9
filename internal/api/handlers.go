package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/fiscal-api/internal/config"
	"github.com/zapponejosh/fiscal-api/internal/database"
	"github.com/zapponejosh/fiscal-api/internal/fiscal"
	"github.com/zapponejosh/fiscal-api/internal/logger"
)

// Store is the persistence the handlers need. *database.DB satisfies it.
type Store interface {
	Health(ctx context.Context) error
	GetSettings(ctx context.Context) (*database.Settings, error)
	SaveSettings(ctx context.Context, s *database.Settings) error
	GetSelection(ctx context.Context, scope string) (*database.PeriodSelection, error)
	ListSelections(ctx context.Context) ([]database.PeriodSelection, error)
	SaveSelection(ctx context.Context, sel *database.PeriodSelection) error
	DeleteSelection(ctx context.Context, scope string) error
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	store  Store
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// Option configures Handlers.
type Option func(*Handlers)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) {
		h.now = now
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store Store, cfg *config.Config, logger *slog.Logger, opts ...Option) *Handlers {
	h := &Handlers{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// =============================================================================
// Response types
// =============================================================================

type fiscalYearResponse struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type quarterResponse struct {
	Number     int    `json:"number"`
	Label      string `json:"label"`
	ShortLabel string `json:"short_label"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type periodsResponse struct {
	Date            string                 `json:"date"`
	Granularity     fiscal.Granularity     `json:"granularity"`
	FiscalYearStart fiscal.FiscalYearStart `json:"fiscal_year_start"`
	Window          fiscal.Window          `json:"window"`
	Options         []fiscal.PeriodOption  `json:"options"`
}

func newFiscalYearResponse(fy fiscal.FiscalYear) fiscalYearResponse {
	return fiscalYearResponse{
		Label: fy.Label,
		Start: fiscal.FormatDate(fy.Start),
		End:   fiscal.FormatDate(fy.End),
	}
}

// =============================================================================
// Handlers
// =============================================================================

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Health(r.Context()); err != nil {
		h.log(r).Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// GetFiscalYear handles GET /api/v1/fiscal-year?date=YYYY-MM-DD
func (h *Handlers) GetFiscalYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	settings, err := h.settings(ctx)
	if err != nil {
		h.log(r).Error("failed to load settings", slog.Any("error", err))
		WriteInternalError(w, "Failed to load fiscal settings")
		return
	}

	fy := fiscal.ResolveFiscalYear(date, settings.FiscalYearStart)
	q := fiscal.QuarterOf(date, settings.FiscalYearStart)

	WriteSuccess(w, map[string]interface{}{
		"date":        fiscal.FormatDate(date),
		"fiscal_year": newFiscalYearResponse(fy),
		"quarter": quarterResponse{
			Number:     q.Number,
			Label:      q.Label(),
			ShortLabel: q.ShortLabel(),
			Start:      fiscal.FormatDate(q.Start),
			End:        fiscal.FormatDate(q.End),
		},
	})
}

// GetPeriods handles GET /api/v1/periods
//
// Query parameters: granularity (quarter, default; or year), future and past
// (default to the stored window), date (default today).
func (h *Handlers) GetPeriods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	granularity := fiscal.GranularityQuarter
	if g := q.Get("granularity"); g != "" {
		parsed, err := fiscal.ParseGranularity(g)
		if err != nil {
			WriteBadRequest(w, err.Error())
			return
		}
		granularity = parsed
	}

	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	settings, err := h.settings(ctx)
	if err != nil {
		h.log(r).Error("failed to load settings", slog.Any("error", err))
		WriteInternalError(w, "Failed to load fiscal settings")
		return
	}

	window := settings.Window
	if window.Future, ok = intParam(w, r, "future", window.Future); !ok {
		return
	}
	if window.Past, ok = intParam(w, r, "past", window.Past); !ok {
		return
	}

	options, err := fiscal.GeneratePeriodOptions(settings.FiscalYearStart, date, window, granularity)
	if err != nil {
		WriteValidationError(w, err)
		return
	}

	WriteSuccess(w, periodsResponse{
		Date:            fiscal.FormatDate(date),
		Granularity:     granularity,
		FiscalYearStart: settings.FiscalYearStart.Normalize(),
		Window:          window,
		Options:         options,
	})
}

// GetSettings handles GET /api/v1/settings
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings(r.Context())
	if err != nil {
		h.log(r).Error("failed to load settings", slog.Any("error", err))
		WriteInternalError(w, "Failed to load fiscal settings")
		return
	}

	WriteSuccess(w, settings)
}

// PutSettings handles PUT /api/v1/settings
func (h *Handlers) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FiscalYearStart fiscal.FiscalYearStart `json:"fiscal_year_start"`
		Window          *fiscal.Window         `json:"window"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	settings := &database.Settings{
		FiscalYearStart: req.FiscalYearStart,
		Window:          h.cfg.PeriodWindow,
	}
	if req.Window != nil {
		settings.Window = *req.Window
	}

	if err := h.store.SaveSettings(r.Context(), settings); err != nil {
		if IsValidationError(err) {
			WriteValidationError(w, err)
			return
		}
		h.log(r).Error("failed to save settings", slog.Any("error", err))
		WriteInternalError(w, "Failed to save fiscal settings")
		return
	}

	h.log(r).Info("fiscal settings updated",
		slog.String("fiscal_year_start", settings.FiscalYearStart.String()),
		slog.Int("future", settings.Window.Future),
		slog.Int("past", settings.Window.Past),
	)

	saved, err := h.store.GetSettings(r.Context())
	if err != nil {
		h.log(r).Error("failed to reload settings", slog.Any("error", err))
		WriteInternalError(w, "Failed to load fiscal settings")
		return
	}

	WriteSuccess(w, saved)
}

// ListSelections handles GET /api/v1/selections
func (h *Handlers) ListSelections(w http.ResponseWriter, r *http.Request) {
	selections, err := h.store.ListSelections(r.Context())
	if err != nil {
		h.log(r).Error("failed to list selections", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve selections")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"selections": selections,
		"count":      len(selections),
	})
}

// GetSelection handles GET /api/v1/selections/{scope}
func (h *Handlers) GetSelection(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")

	sel, err := h.store.GetSelection(r.Context(), scope)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("No selection saved for %q", scope))
			return
		}
		h.log(r).Error("failed to get selection", slog.String("scope", scope), slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve selection")
		return
	}

	WriteSuccess(w, sel)
}

// PutSelection handles PUT /api/v1/selections/{scope}
//
// The value must be the start of a fiscal period of the given granularity
// under the current settings, i.e. a value GetPeriods could have returned.
func (h *Handlers) PutSelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := chi.URLParam(r, "scope")

	var req struct {
		Granularity fiscal.Granularity `json:"granularity"`
		Value       string             `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	settings, err := h.settings(ctx)
	if err != nil {
		h.log(r).Error("failed to load settings", slog.Any("error", err))
		WriteInternalError(w, "Failed to load fiscal settings")
		return
	}

	if err := checkPeriodStart(req.Granularity, req.Value, settings.FiscalYearStart); err != nil {
		WriteValidationError(w, err)
		return
	}

	sel := &database.PeriodSelection{
		Scope:       scope,
		Granularity: req.Granularity,
		Value:       req.Value,
	}
	if err := h.store.SaveSelection(ctx, sel); err != nil {
		if IsValidationError(err) {
			WriteValidationError(w, err)
			return
		}
		h.log(r).Error("failed to save selection", slog.String("scope", scope), slog.Any("error", err))
		WriteInternalError(w, "Failed to save selection")
		return
	}

	WriteSuccess(w, sel)
}

// DeleteSelection handles DELETE /api/v1/selections/{scope}
func (h *Handlers) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")

	if err := h.store.DeleteSelection(r.Context(), scope); err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, fmt.Sprintf("No selection saved for %q", scope))
			return
		}
		h.log(r).Error("failed to delete selection", slog.String("scope", scope), slog.Any("error", err))
		WriteInternalError(w, "Failed to delete selection")
		return
	}

	WriteSuccess(w, map[string]string{"message": "Selection deleted"})
}

// =============================================================================
// Helpers
// =============================================================================

// settings returns the stored settings, falling back to the configured
// defaults when nothing has been saved.
func (h *Handlers) settings(ctx context.Context) (*database.Settings, error) {
	s, err := h.store.GetSettings(ctx)
	if err == nil {
		return s, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}
	return &database.Settings{
		FiscalYearStart: h.cfg.FiscalYearStart.Normalize(),
		Window:          h.cfg.PeriodWindow,
	}, nil
}

func (h *Handlers) log(r *http.Request) *slog.Logger {
	return logger.FromContext(r.Context(), h.logger)
}

// dateParam reads the optional date query parameter, defaulting to today.
// It writes a 400 and returns false on a malformed date.
func (h *Handlers) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return fiscal.StartOfDay(h.now()), true
	}

	date, err := fiscal.ParseDate(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return time.Time{}, false
	}
	return date, true
}

// intParam reads an optional integer query parameter.
func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("%s must be an integer, got %q", name, s))
		return 0, false
	}
	return n, true
}

// checkPeriodStart verifies value is the first day of a fiscal period.
func checkPeriodStart(g fiscal.Granularity, value string, start fiscal.FiscalYearStart) error {
	date, err := fiscal.ParseDate(value)
	if err != nil {
		return fmt.Errorf("%w: value %q must be a YYYY-MM-DD date", database.ErrInvalidSelection, value)
	}

	periodStart, err := fiscal.PeriodStart(date, start, g)
	if err != nil {
		return err
	}

	if !periodStart.Equal(date) {
		return fmt.Errorf("%w: %s is not the start of a fiscal %s (did you mean %s?)",
			database.ErrInvalidSelection, value, g, fiscal.FormatDate(periodStart))
	}
	return nil
}

// decodeJSON decodes JSON request body.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
