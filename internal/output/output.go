// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output writes parsed records as a JSON array, a flattened CSV
// (one row per paper and author), or a YAML list, plus a YAML run report.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/abstract-scraper/pkg/types"
)

// CSVHeader is the header row of the flattened CSV output.
var CSVHeader = []string{
	"author_name", "author_url", "author_position", "university_name", "university_url",
	"paper_id", "paper_title", "paper_url", "paper_reference", "date_posted",
	"last_revised", "date_written",
}

// Write writes records to path in the given format.
func Write(path string, format types.OutputFormat, records []types.ParsedRecord) error {
	switch format {
	case types.OutputJSON:
		return writeFile(path, func(w io.Writer) error { return EncodeJSON(w, records) })
	case types.OutputCSV:
		return writeFile(path, func(w io.Writer) error { return EncodeCSV(w, records) })
	case types.OutputYAML:
		return writeFile(path, func(w io.Writer) error { return EncodeYAML(w, records) })
	default:
		return fmt.Errorf("unsupported format %q: use json, csv, or yaml", format)
	}
}

// EncodeJSON writes records as a 4-space indented JSON array. Non-ASCII
// text and markup characters are written as is.
func EncodeJSON(w io.Writer, records []types.ParsedRecord) error {
	if records == nil {
		records = []types.ParsedRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(records)
}

// EncodeCSV writes one row per (paper, author) pair under CSVHeader.
// Papers without authors produce no rows. Absent optional values are
// empty cells.
func EncodeCSV(w io.Writer, records []types.ParsedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, paper := range records {
		for _, author := range paper.Authors {
			row := []string{
				author.Name,
				author.URL,
				strconv.Itoa(author.Position),
				author.UniversityName,
				types.Value(author.UniversityURL),
				strconv.Itoa(paper.ID),
				paper.Title,
				paper.URL,
				types.Value(paper.Reference),
				paper.DatePosted,
				types.Value(paper.LastRevised),
				types.Value(paper.DateWritten),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing CSV row for paper %d: %w", paper.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// EncodeYAML writes records as a YAML list.
func EncodeYAML(w io.Writer, records []types.ParsedRecord) error {
	if records == nil {
		records = []types.ParsedRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// Report summarizes one parse pass.
type Report struct {
	Collection   string             `yaml:"collection"`
	Format       types.OutputFormat `yaml:"format"`
	Output       string             `yaml:"output"`
	Parsed       int                `yaml:"parsed"`
	Invalid      int                `yaml:"invalid"`
	InvalidIDs   []int              `yaml:"invalid_ids"`
	LimitReached bool               `yaml:"limit_reached"`
	Timestamp    time.Time          `yaml:"timestamp"`
}

// WriteReport saves a run report as YAML.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a run report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}

// writeFile writes to a temporary file next to path and renames it into
// place, so an interrupted run never leaves a truncated output.
func writeFile(path string, encode func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".output-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	encErr := encode(tmp)
	closeErr := tmp.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, encErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
