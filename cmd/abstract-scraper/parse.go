// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/abstract-scraper/internal/extract"
	"github.com/pdiddy/abstract-scraper/internal/output"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the raw store into structured records",
	Long: `Parse streams <collection>_raw_abstracts.json, skips pages that report the
abstract as not found, and extracts title, reference, dates, and authors from
the rest. Records are written to <collection>_parsed_abstracts.<format> and a
run report to <collection>_parse_report.yaml.

A page without a posted date stops the run and its url is printed.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "", "output format: json, csv, yaml (default json)")
	parseCmd.Flags().Int("limit", 0, "stop after this many parsed records (0 = no limit)")
	parseCmd.Flags().Bool("no-progress", false, "print progress lines instead of a progress bar")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = viper.GetString("format")
	}
	if format == "" {
		format = string(types.OutputJSON)
	}
	switch types.OutputFormat(format) {
	case types.OutputJSON, types.OutputCSV, types.OutputYAML:
	default:
		return fmt.Errorf("unsupported format %q: use json, csv, or yaml", format)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit == 0 {
		limit = viper.GetInt("limit")
	}

	cfg := types.ParseConfig{Limit: limit, Format: types.OutputFormat(format)}
	col := collection()

	result, err := extract.ParseStore(col.RawPath(), cfg, reporter(cmd, "Parsing"), os.Stderr)
	if err != nil {
		return err
	}

	outPath := col.OutputPath(cfg.Format)
	if err := output.Write(outPath, cfg.Format, result.Records); err != nil {
		return err
	}

	report := output.Report{
		Collection:   col.Name,
		Format:       cfg.Format,
		Output:       outPath,
		Parsed:       result.Parsed(),
		Invalid:      result.Invalid(),
		InvalidIDs:   result.InvalidIDs,
		LimitReached: result.LimitReached,
		Timestamp:    time.Now().UTC(),
	}
	if err := output.WriteReport(col.ReportPath(), report); err != nil {
		return err
	}

	if len(result.InvalidIDs) > 0 {
		fmt.Fprintf(os.Stdout, "Invalid ids: %v\n", result.InvalidIDs)
	}

	t := newTable(os.Stdout)
	t.AppendHeader(row("Output", "Parsed", "Invalid", "Total", "Limit reached"))
	t.AppendRow(row(outPath, result.Parsed(), result.Invalid(), result.Total(), result.LimitReached))
	t.Render()
	return nil
}
