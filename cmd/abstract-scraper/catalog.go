// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/abstract-scraper/internal/catalog"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load parsed records into a SQLite catalog and search it",
	Long: `Catalog keeps the collection's parsed records in <collection>.db so they
can be searched by title or author. Use subcommands to load, search, or get
a single record.`,
}

// --- load subcommand ---

var catalogLoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load a parsed JSON output into the catalog",
	Long: `Load streams a parsed JSON output (default <collection>_parsed_abstracts.json)
into the catalog. Records already present are replaced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogLoad,
}

func runCatalogLoad(cmd *cobra.Command, args []string) error {
	col := collection()
	path := col.OutputPath(types.OutputJSON)
	if len(args) == 1 {
		path = args[0]
	}

	store, err := catalog.NewStore(catalogConfig(cmd, col))
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Load(cmd.Context(), path, os.Stdout)
	return err
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the catalog by title and author",
	Long: `Search returns catalog records whose title contains --title and that
have an author whose name contains --author. Matching is case-insensitive
and both filters may be combined. Results are ordered newest id first.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	opts := catalog.QueryOptions{Title: title, Author: author}
	if opts.IsEmpty() {
		return fmt.Errorf("filter required: provide --title or --author")
	}

	store, err := catalog.NewStore(catalogConfig(cmd, collection()))
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []types.ParsedRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []types.ParsedRecord{}
		}
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	t := newTable(os.Stdout)
	t.AppendHeader(row("ID", "Title", "Authors", "Posted"))
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 3, WidthMax: 40},
	})
	for _, r := range results {
		names := make([]string, len(r.Authors))
		for i, a := range r.Authors {
			names[i] = a.Name
		}
		t.AppendRow(row(r.ID, r.Title, strings.Join(names, ", "), r.DatePosted))
	}
	t.AppendFooter(row("", fmt.Sprintf("%d results", len(results)), "", ""))
	t.Render()
	return nil
}

// --- get subcommand ---

var catalogGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one catalog record by id",
	Long: `Get prints the catalog record with the given abstract id, including
its authors and affiliations.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogGet,
}

func runCatalogGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}

	store, err := catalog.NewStore(catalogConfig(cmd, collection()))
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRecordOutput(cmd.OutOrStdout(), rec, jsonOutput)
}

func formatRecordOutput(w io.Writer, rec *types.ParsedRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	t := newTable(w)
	t.AppendRow(row("ID", rec.ID))
	t.AppendRow(row("Title", rec.Title))
	t.AppendRow(row("URL", rec.URL))
	t.AppendRow(row("Reference", types.Value(rec.Reference)))
	t.AppendRow(row("Posted", rec.DatePosted))
	t.AppendRow(row("Last revised", types.Value(rec.LastRevised)))
	t.AppendRow(row("Written", types.Value(rec.DateWritten)))
	t.Render()

	if len(rec.Authors) == 0 {
		return nil
	}
	a := newTable(w)
	a.AppendHeader(row("#", "Author", "Affiliation"))
	for _, au := range rec.Authors {
		a.AppendRow(row(au.Position, au.Name, au.UniversityName))
	}
	a.Render()
	return nil
}

func catalogConfig(cmd *cobra.Command, col types.Collection) types.CatalogConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = viper.GetInt("max_results")
	}
	return types.CatalogConfig{
		Path:       col.CatalogPath(),
		MaxResults: maxResults,
	}
}

func init() {
	catalogSearchCmd.Flags().String("title", "", "match titles containing this text")
	catalogSearchCmd.Flags().String("author", "", "match author names containing this text")
	catalogSearchCmd.Flags().Int("max-results", 0, "maximum number of results (default 20)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	catalogGetCmd.Flags().Bool("json", false, "output the record as JSON")

	catalogCmd.AddCommand(catalogLoadCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogGetCmd)
	rootCmd.AddCommand(catalogCmd)
}
