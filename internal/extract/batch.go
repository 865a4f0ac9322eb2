// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"

	"github.com/pdiddy/abstract-scraper/internal/progress"
	"github.com/pdiddy/abstract-scraper/internal/rawstore"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

// BatchResult holds the outcome of a parse pass over a raw store.
type BatchResult struct {
	Records    []types.ParsedRecord
	InvalidIDs []int

	// LimitReached is set when the pass stopped at ParseConfig.Limit.
	LimitReached bool
}

// Parsed returns the number of records extracted.
func (r BatchResult) Parsed() int {
	return len(r.Records)
}

// Invalid returns the number of pages classified invalid.
func (r BatchResult) Invalid() int {
	return len(r.InvalidIDs)
}

// Total returns the number of pages processed.
func (r BatchResult) Total() int {
	return r.Parsed() + r.Invalid()
}

// ParseStore streams the raw pages in the store at path, skips invalid
// pages, and extracts a record from every other page. The first
// ExtractionError aborts the pass; the partial result is returned with it.
// Progress is sized with rawstore.Count, which costs one extra pass.
func ParseStore(path string, cfg types.ParseConfig, rep progress.Reporter, w io.Writer) (*BatchResult, error) {
	total, err := rawstore.Count(path)
	if err != nil {
		return nil, fmt.Errorf("counting raw pages: %w", err)
	}

	result := &BatchResult{
		Records:    []types.ParsedRecord{},
		InvalidIDs: []int{},
	}

	rep.Start(total)
	defer rep.Done()

	for page, err := range rawstore.Records[types.RawPage](path) {
		if err != nil {
			return result, fmt.Errorf("reading raw pages: %w", err)
		}
		rep.Step(fmt.Sprintf("ID: %d. Invalid abstracts: %d", page.ID, result.Invalid()))

		if IsInvalid(page) {
			result.InvalidIDs = append(result.InvalidIDs, page.ID)
			continue
		}

		rec, err := Extract(page)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s\n", page.URL)
			return result, err
		}
		result.Records = append(result.Records, *rec)

		if cfg.Limit > 0 && result.Parsed() >= cfg.Limit {
			result.LimitReached = true
			break
		}
	}

	return result, nil
}
