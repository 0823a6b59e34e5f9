package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/fiscal-api/internal/cli"
	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

var quartersCmd = &cobra.Command{
	Use:   "quarters",
	Short: "List selectable fiscal quarters around a date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList(cmd, fiscal.GranularityQuarter)
	},
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List selectable fiscal years around a date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList(cmd, fiscal.GranularityYear)
	},
}

func init() {
	for _, c := range []*cobra.Command{quartersCmd, yearsCmd} {
		c.Flags().IntVar(&flagFuture, "future", defaultWindow.Future, "Periods to offer from the current one onwards")
		c.Flags().IntVar(&flagPast, "past", defaultWindow.Past, "Periods to offer before the current one")
		rootCmd.AddCommand(c)
	}
}

func runList(cmd *cobra.Command, granularity fiscal.Granularity) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	options, err := fiscal.GeneratePeriodOptions(s.Start, s.Date, s.Window, granularity)
	if err != nil {
		return err
	}
	s.Log.Debug("period options generated",
		"granularity", string(granularity),
		"count", len(options),
	)

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(options)
	}

	if len(options) == 0 {
		fmt.Fprintln(out, "\n  No periods in the selected window.")
		return nil
	}

	current := fiscal.FormatDate(fiscal.ResolveFiscalYear(s.Date, s.Start).Start)
	if granularity == fiscal.GranularityQuarter {
		current = fiscal.FormatDate(fiscal.QuarterOf(s.Date, s.Start).Start)
	}

	title := fmt.Sprintf("FISCAL %sS  around %s", strings.ToUpper(string(granularity)), fiscal.FormatDate(s.Date))

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(title))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.PeriodTable("", options, current)))
	return nil
}
