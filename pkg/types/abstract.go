// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the abstract-scraper pipeline.
// Covers the fetched page record (RawPage), the normalized metadata record
// (ParsedRecord, Author), and the per-stage configuration structs.
package types

// RawPage is one fetched abstract page as persisted in the raw store.
// Identity is ID; a RawPage is never modified once appended.
type RawPage struct {
	// ID is the repository's numeric abstract identifier.
	ID int `json:"id" yaml:"id"`

	// URL is the page address that was fetched.
	URL string `json:"url" yaml:"url"`

	// Error is true when the fetch returned a non-200 status.
	Error bool `json:"error" yaml:"error"`

	// StatusCode is the HTTP status of the fetch.
	StatusCode int `json:"status_code" yaml:"status_code"`

	// HTML is the response body with blank lines removed.
	HTML string `json:"html" yaml:"html"`
}

// Author is one author entry of a parsed abstract page.
type Author struct {
	URL string `json:"url" yaml:"url"`

	// Position is the 1-based order of the author on the page.
	Position int `json:"position" yaml:"position"`

	Name string `json:"name" yaml:"name"`

	// UniversityName is the affiliation text, or the affiliation link text
	// when the affiliation is a link.
	UniversityName string `json:"university_name" yaml:"university_name"`

	// UniversityURL is set only when the affiliation is a link.
	UniversityURL *string `json:"university_url" yaml:"university_url"`
}

// ParsedRecord is the normalized metadata extracted from a RawPage.
// Optional fields are nil when the page does not carry them and serialize
// as null.
type ParsedRecord struct {
	ID          int      `json:"id" yaml:"id"`
	URL         string   `json:"url" yaml:"url"`
	Title       string   `json:"title" yaml:"title"`
	Reference   *string  `json:"reference" yaml:"reference"`
	DatePosted  string   `json:"date_posted" yaml:"date_posted"`
	LastRevised *string  `json:"last_revised" yaml:"last_revised"`
	DateWritten *string  `json:"date_written" yaml:"date_written"`
	Authors     []Author `json:"authors" yaml:"authors"`
}

// Optional returns a pointer to s, for populating optional record fields.
func Optional(s string) *string {
	return &s
}

// Value returns the pointed-to string, or "" when p is nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
