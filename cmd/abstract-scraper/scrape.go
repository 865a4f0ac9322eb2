// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/abstract-scraper/internal/progress"
	"github.com/pdiddy/abstract-scraper/internal/rawstore"
	"github.com/pdiddy/abstract-scraper/internal/scrape"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

const (
	defaultTimeout         = 60 * time.Second
	defaultUserAgent       = "abstract-scraper/0.1"
	defaultPageURLTemplate = "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=%d"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch abstract pages into the collection's raw store",
	Long: `Scrape reads <collection>_ids.txt, keeps ids greater than --min-id, and
fetches each page newest id first. Every fetched page is appended to
<collection>_raw_abstracts.json immediately. Ids already in the store are
skipped, so an interrupted run continues where it stopped when run again.

Pages returning a status other than 200 are stored with error set.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().Int("min-id", 0, "skip ids less than or equal to this value")
	scrapeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	scrapeCmd.Flags().Duration("delay", 0, "pause between consecutive page fetches")
	scrapeCmd.Flags().String("page-url-template", "", "page address template taking the id (%d)")
	scrapeCmd.Flags().Bool("no-progress", false, "print progress lines instead of a progress bar")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	minID, _ := cmd.Flags().GetInt("min-id")
	if minID == 0 {
		minID = viper.GetInt("min_id")
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = viper.GetDuration("fetch_delay")
	}
	tmpl, _ := cmd.Flags().GetString("page-url-template")
	if tmpl == "" {
		tmpl = viper.GetString("page_url_template")
	}
	if tmpl == "" {
		tmpl = defaultPageURLTemplate
	}

	cfg := types.ScrapeConfig{
		HTTPConfig:      httpConfig(cmd),
		PageURLTemplate: tmpl,
		MinID:           minID,
		FetchDelay:      delay,
	}
	col := collection()

	ids, err := scrape.ReadIDs(col.IDsPath(), cfg.MinID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintf(os.Stdout, "No ids above %d in %s\n", cfg.MinID, col.IDsPath())
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	store := rawstore.New(col.RawPath())
	summary, err := scrape.Run(ctx, scrape.NewHTTPFetcher(cfg.HTTPConfig), store, ids, cfg, reporter(cmd, "Fetching"), os.Stderr)

	t := newTable(os.Stdout)
	t.AppendHeader(row("Store", "Stored", "HTTP errors", "Skipped", "Total"))
	t.AppendRow(row(store.Path(), summary.Stored, summary.Errored, summary.Skipped, summary.Total()))
	t.Render()

	return err
}

// reporter returns a progress bar, or plain lines with --no-progress.
func reporter(cmd *cobra.Command, label string) progress.Reporter {
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); noProgress {
		return &progress.Lines{W: os.Stderr, Every: 100}
	}
	return progress.NewBar(os.Stderr, label)
}
