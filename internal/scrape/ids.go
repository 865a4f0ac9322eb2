// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// indexInputSelector is the hidden input whose value lists the ids of
// every paper in a journal browse page.
const indexInputSelector = "input#listAB_ID"

// ReadIDs loads a newline-separated id list, keeps ids greater than minID,
// and returns them in descending order. Blank lines are ignored.
func ReadIDs(path string, minID int) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading id list: %w", err)
	}

	var ids []int
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid id %q", path, i+1, line)
		}
		if id > minID {
			ids = append(ids, id)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	return ids, nil
}

// WriteIDs saves ids one per line.
func WriteIDs(path string, ids []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = strconv.Itoa(id)
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

// ParseIndex reads the comma-separated id list from a journal browse page.
func ParseIndex(html string) ([]int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing index page: %w", err)
	}

	input := doc.Find(indexInputSelector).First()
	if input.Length() == 0 {
		return nil, fmt.Errorf("index page has no %s element", indexInputSelector)
	}
	value, _ := input.Attr("value")

	var ids []int
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("index page: invalid id %q", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
