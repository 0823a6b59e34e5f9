package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
	"github.com/zapponejosh/fiscal-api/internal/logger"
)

var (
	flagConfig     string
	flagStartMonth int
	flagStartDay   int
	flagDate       string
	flagFuture     int
	flagPast       int
	flagJSON       bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "periods",
	Short: "Fiscal period calculator",
	Long: "Resolve fiscal years and list selectable fiscal quarters or years " +
		"around a date, for any fiscal year start.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "TOML config file (default "+defaultConfigPath()+")")
	pf.IntVar(&flagStartMonth, "start-month", 1, "Fiscal year start month (1-12)")
	pf.IntVar(&flagStartDay, "start-day", 1, "Fiscal year start day of month")
	pf.StringVar(&flagDate, "date", "", "Reference date as YYYY-MM-DD (default today)")
	pf.BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log resolution details to stderr")
}

// settings is everything a command needs, merged from flags, the config
// file and defaults, in that order of precedence.
type settings struct {
	Start  fiscal.FiscalYearStart
	Window fiscal.Window
	Date   time.Time
	Log    *slog.Logger
}

func resolveSettings(cmd *cobra.Command) (*settings, error) {
	log := newLogger(cmd.ErrOrStderr())

	file, err := loadFileConfig(flagConfig)
	if err != nil {
		return nil, err
	}

	s := &settings{
		Start:  file.start(),
		Window: file.window(),
		Log:    log,
	}

	flags := cmd.Flags()
	if flags.Changed("start-month") || flags.Changed("start-day") {
		if s.Start.IsZero() {
			s.Start = fiscal.Default()
		}
		if flags.Changed("start-month") {
			s.Start.Month = time.Month(flagStartMonth)
		}
		if flags.Changed("start-day") {
			s.Start.Day = flagStartDay
		}
	}
	s.Start = s.Start.Normalize()
	if err := s.Start.Validate(); err != nil {
		return nil, err
	}

	if flags.Changed("future") {
		s.Window.Future = flagFuture
	}
	if flags.Changed("past") {
		s.Window.Past = flagPast
	}

	if flagDate == "" {
		s.Date = fiscal.StartOfDay(time.Now())
	} else {
		s.Date, err = fiscal.ParseDate(flagDate)
		if err != nil {
			return nil, fmt.Errorf("invalid --date %q: use YYYY-MM-DD", flagDate)
		}
	}

	log.Debug("settings resolved",
		slog.String("fiscal_year_start", s.Start.String()),
		slog.String("date", fiscal.FormatDate(s.Date)),
		slog.Int("future", s.Window.Future),
		slog.Int("past", s.Window.Past),
	)

	return s, nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	return logger.New(w, level, "text")
}
