//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups the collection stages. Each target builds the CLI first
// and uses the collection named by ABSTRACT_SCRAPER_COLLECTION (default fen).
type Pipeline mg.Namespace

func runCLI(args ...string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// IDs fetches the index page and writes the collection's id list.
func (Pipeline) IDs() error {
	return runCLI("ids")
}

// Scrape fetches every listed page into the raw store.
func (Pipeline) Scrape() error {
	return runCLI("scrape", "--no-progress")
}

// Parse parses the raw store into the format named by FORMAT (default json).
func (Pipeline) Parse() error {
	format := os.Getenv("FORMAT")
	if format == "" {
		format = "json"
	}
	return runCLI("parse", "--format", format, "--no-progress")
}

// Catalog parses the raw store to JSON and loads it into the SQLite catalog.
func (Pipeline) Catalog() error {
	if err := runCLI("parse", "--format", "json", "--no-progress"); err != nil {
		return err
	}
	return runCLI("catalog", "load")
}

// All runs every stage in order.
func (Pipeline) All() {
	mg.SerialDeps(Pipeline.IDs, Pipeline.Scrape, Pipeline.Catalog)
}
