// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape fetches abstract pages and appends them to a collection's
// raw store. Ids already in the store are skipped, so an interrupted run
// resumes by running it again.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/abstract-scraper/internal/progress"
	"github.com/pdiddy/abstract-scraper/internal/rawstore"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

// Summary holds the outcome of a fetch loop.
type Summary struct {
	// Stored counts pages fetched with HTTP 200 and appended.
	Stored int

	// Errored counts pages fetched with another status; they are appended
	// with Error set.
	Errored int

	// Skipped counts ids already present in the store.
	Skipped int
}

// Total returns the number of ids processed.
func (s Summary) Total() int {
	return s.Stored + s.Errored + s.Skipped
}

// FetchIndex fetches the journal browse page at url and returns its ids.
func FetchIndex(ctx context.Context, f Fetcher, url string) ([]int, error) {
	resp, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching index page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index page returned HTTP %d", resp.StatusCode)
	}
	return ParseIndex(resp.Body)
}

// Run fetches every id not yet in store and appends a RawPage for each.
// It stops at the first transport or store error; pages appended before
// the error stay in the store.
func Run(ctx context.Context, f Fetcher, store *rawstore.Store, ids []int, cfg types.ScrapeConfig, rep progress.Reporter, w io.Writer) (Summary, error) {
	var summary Summary

	existing, err := store.IDs()
	if err != nil {
		return summary, fmt.Errorf("loading stored ids: %w", err)
	}

	rep.Start(len(ids))
	defer rep.Done()

	fetched := false
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rep.Step(fmt.Sprintf("ID: %d", id))

		if _, ok := existing[id]; ok {
			summary.Skipped++
			continue
		}

		if fetched && cfg.FetchDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(cfg.FetchDelay):
			}
		}

		url := cfg.PageURL(id)
		resp, err := f.Fetch(ctx, url)
		fetched = true
		if err != nil {
			return summary, fmt.Errorf("fetching id %d: %w", id, err)
		}

		page := types.RawPage{
			ID:         id,
			URL:        url,
			Error:      resp.StatusCode != http.StatusOK,
			StatusCode: resp.StatusCode,
			HTML:       RemoveBlankLines(resp.Body),
		}
		if err := store.Append(page); err != nil {
			return summary, fmt.Errorf("storing id %d: %w", id, err)
		}
		existing[id] = struct{}{}

		if page.Error {
			fmt.Fprintf(w, "warning: id %d returned HTTP %d\n", id, resp.StatusCode)
			summary.Errored++
		} else {
			summary.Stored++
		}
	}

	return summary, nil
}

// RemoveBlankLines drops lines that are empty or whitespace-only and joins
// the rest with "\n". Both "\r\n" and "\n" line endings are accepted.
func RemoveBlankLines(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
