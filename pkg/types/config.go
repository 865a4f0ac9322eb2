package types

import (
	"fmt"
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "abstract-scraper/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Headers are extra request headers (e.g. a Cookie loaded from .secrets/).
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Collection names one dataset (e.g. a research network) and the data
// directory holding its files.
type Collection struct {
	// Name is the collection name used as the file prefix (e.g. "fen").
	Name string `json:"name" yaml:"name"`

	// DataDir is the directory holding all collection files (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// IDsPath returns the path of the newline-separated id list.
func (c Collection) IDsPath() string {
	return filepath.Join(c.DataDir, c.Name+"_ids.txt")
}

// RawPath returns the path of the raw page store.
func (c Collection) RawPath() string {
	return filepath.Join(c.DataDir, c.Name+"_raw_abstracts.json")
}

// OutputPath returns the path of the parsed output for the given format.
func (c Collection) OutputPath(format OutputFormat) string {
	return filepath.Join(c.DataDir, fmt.Sprintf("%s_parsed_abstracts.%s", c.Name, format))
}

// ReportPath returns the path of the parse run report.
func (c Collection) ReportPath() string {
	return filepath.Join(c.DataDir, c.Name+"_parse_report.yaml")
}

// CatalogPath returns the path of the SQLite catalog database.
func (c Collection) CatalogPath() string {
	return filepath.Join(c.DataDir, c.Name+".db")
}

// IndexConfig holds settings for fetching the index listing of ids.
type IndexConfig struct {
	HTTPConfig `yaml:",inline"`

	// IndexURL is the journal browse page listing the collection's ids.
	IndexURL string `json:"index_url" yaml:"index_url"`
}

// ScrapeConfig holds settings for the page fetch loop.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageURLTemplate is a fmt template taking the integer id
	// (e.g. "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=%d").
	PageURLTemplate string `json:"page_url_template" yaml:"page_url_template"`

	// MinID excludes ids less than or equal to it.
	MinID int `json:"min_id" yaml:"min_id"`

	// FetchDelay is the pause between consecutive page fetches.
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`
}

// PageURL returns the page address for id.
func (c ScrapeConfig) PageURL(id int) string {
	return fmt.Sprintf(c.PageURLTemplate, id)
}

// OutputFormat selects the parsed output format.
type OutputFormat string

const (
	OutputJSON OutputFormat = "json"
	OutputCSV  OutputFormat = "csv"
	OutputYAML OutputFormat = "yaml"
)

// ParseConfig holds settings for the parse pass.
type ParseConfig struct {
	// Limit stops the pass after this many parsed records (0 = no limit).
	Limit int `json:"limit" yaml:"limit"`

	// Format selects the output format: json, csv, or yaml.
	Format OutputFormat `json:"format" yaml:"format"`
}

// CatalogConfig holds settings for the SQLite catalog.
type CatalogConfig struct {
	// Path is the database file path.
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
