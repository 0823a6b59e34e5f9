package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/fiscal-api/internal/cli"
	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

var fyCmd = &cobra.Command{
	Use:   "fy [date]",
	Short: "Show the fiscal year and quarter containing a date",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFY,
}

func init() {
	rootCmd.AddCommand(fyCmd)
}

type fyOutput struct {
	Date         string `json:"date"`
	FiscalYear   string `json:"fiscal_year"`
	YearStart    string `json:"year_start"`
	YearEnd      string `json:"year_end"`
	Quarter      int    `json:"quarter"`
	QuarterLabel string `json:"quarter_label"`
	QuarterStart string `json:"quarter_start"`
	QuarterEnd   string `json:"quarter_end"`
}

func runFY(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		flagDate = args[0]
	}

	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	fy := fiscal.ResolveFiscalYear(s.Date, s.Start)
	q := fiscal.QuarterOf(s.Date, s.Start)
	date := fiscal.FormatDate(s.Date)

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(fyOutput{
			Date:         date,
			FiscalYear:   fy.Label,
			YearStart:    fiscal.FormatDate(fy.Start),
			YearEnd:      fiscal.FormatDate(fy.End),
			Quarter:      q.Number,
			QuarterLabel: q.ShortLabel(),
			QuarterStart: fiscal.FormatDate(q.Start),
			QuarterEnd:   fiscal.FormatDate(q.End),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("FISCAL YEAR  starting %s", s.Start)))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderFiscalYear(date, fy, q))
	return nil
}
