// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/abstract-scraper/internal/scrape"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

const defaultIndexURL = "https://papers.ssrn.com/sol3/Jeljour_results.cfm?form_name=journalBrowse&journal_id=203"

var idsCmd = &cobra.Command{
	Use:   "ids",
	Short: "Fetch the collection's index page and write its id list",
	Long: `Ids fetches the journal browse page, reads the abstract ids it lists,
and writes them one per line to <collection>_ids.txt. An existing id file
is replaced.`,
	RunE: runIDs,
}

func init() {
	idsCmd.Flags().String("index-url", "", "journal browse page listing the ids")
	idsCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(idsCmd)
}

func runIDs(cmd *cobra.Command, args []string) error {
	indexURL, _ := cmd.Flags().GetString("index-url")
	if indexURL == "" {
		indexURL = viper.GetString("index_url")
	}
	if indexURL == "" {
		indexURL = defaultIndexURL
	}

	cfg := types.IndexConfig{
		HTTPConfig: httpConfig(cmd),
		IndexURL:   indexURL,
	}
	col := collection()

	ids, err := scrape.FetchIndex(cmd.Context(), scrape.NewHTTPFetcher(cfg.HTTPConfig), cfg.IndexURL)
	if err != nil {
		return err
	}
	if err := scrape.WriteIDs(col.IDsPath(), ids); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %d ids to %s\n", len(ids), col.IDsPath())
	return nil
}
