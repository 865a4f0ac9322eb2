// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract maps fetched abstract pages to normalized metadata records.
//
// A page is either invalid (the repository reported it does not exist) or
// parsed into a ParsedRecord. The posted date is the one mandatory field:
// a page without it fails with an ExtractionError, which aborts a batch.
// Every other lookup is optional and leaves its field empty or nil.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/abstract-scraper/pkg/types"
)

// NotFoundSentinel appears in the markup of pages for ids that do not exist.
const NotFoundSentinel = "The abstract you requested was not found"

const (
	containerSelector = "div.box-abstract-main"
	referenceSelector = "div.reference-info"
	authorsSelector   = "div.authors"
)

// Character classes are Unicode-aware: RE2's \s, \d and \w are ASCII-only,
// and page text carries non-breaking spaces decoded from &nbsp;.
var (
	postedPattern  = regexp.MustCompile(`Posted:[\s\p{Z}]*(\p{Nd}+[\s\p{Z}]*[\p{L}\p{N}_]+[\s\p{Z}]*\p{Nd}+)`)
	revisedPattern = regexp.MustCompile(`Last revised:[\s\p{Z}]*(\p{Nd}+[\s\p{Z}]*[\p{L}\p{N}_]+[\s\p{Z}]*\p{Nd}+)`)
	writtenPattern = regexp.MustCompile(`Date Written:[\s\p{Z}]([\p{L}\p{N}_ ]*)`)

	innerWhitespace = regexp.MustCompile(`[\s\p{Z}]+`)
)

// ExtractionError reports a page missing a mandatory field.
type ExtractionError struct {
	ID     int
	URL    string
	Field  string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extracting %s from %s (id %d): %s", e.Field, e.URL, e.ID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsInvalid reports whether the page markup contains NotFoundSentinel.
func IsInvalid(page types.RawPage) bool {
	return strings.Contains(page.HTML, NotFoundSentinel)
}

// Extract parses the page markup into a ParsedRecord.
// Title, dates and author fields are trimmed with inner whitespace collapsed
// to a single space, so a date written "March  3 2021 " reads "March 3 2021".
func Extract(page types.RawPage) (*types.ParsedRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, &ExtractionError{ID: page.ID, URL: page.URL, Field: "html", Reason: "parsing markup", Err: err}
	}

	box, ok := first(doc.Selection, containerSelector)
	if !ok {
		return nil, &ExtractionError{ID: page.ID, URL: page.URL, Field: "date_posted", Reason: "abstract container not found"}
	}
	text := box.Text()

	posted, ok := match(postedPattern, text)
	if !ok {
		return nil, &ExtractionError{ID: page.ID, URL: page.URL, Field: "date_posted", Reason: "no Posted date found"}
	}

	rec := &types.ParsedRecord{
		ID:         page.ID,
		URL:        page.URL,
		DatePosted: posted,
		Reference:  reference(doc.Selection),
		Authors:    authors(doc.Selection),
	}
	if h1, ok := first(box, "h1"); ok {
		rec.Title = clean(h1.Text())
	}
	if v, ok := match(revisedPattern, text); ok {
		rec.LastRevised = types.Optional(v)
	}
	if v, ok := match(writtenPattern, text); ok {
		rec.DateWritten = types.Optional(v)
	}
	return rec, nil
}

// reference returns the text of the first link in the reference info box.
func reference(doc *goquery.Selection) *string {
	box, ok := first(doc, referenceSelector)
	if !ok {
		return nil
	}
	link, ok := first(box, "a")
	if !ok {
		return nil
	}
	return types.Optional(clean(link.Text()))
}

// authors reads one Author per h2 in the authors box. The affiliation is
// the first p following the heading and before the next author heading.
func authors(doc *goquery.Selection) []types.Author {
	out := []types.Author{}
	box, ok := first(doc, authorsSelector)
	if !ok {
		return out
	}

	box.Find("h2").Each(func(i int, heading *goquery.Selection) {
		a := types.Author{Position: i + 1}
		if link, ok := first(heading, "a"); ok {
			a.Name = clean(link.Text())
			a.URL = href(link)
		} else {
			a.Name = clean(heading.Text())
		}

		if p, ok := affiliation(heading); ok {
			if link, ok := first(p, "a"); ok {
				a.UniversityName = clean(link.Text())
				a.UniversityURL = types.Optional(href(link))
			} else {
				a.UniversityName = clean(p.Text())
			}
		}
		out = append(out, a)
	})
	return out
}

func affiliation(heading *goquery.Selection) (*goquery.Selection, bool) {
	p := heading.NextUntil("h2").Filter("p").First()
	return p, p.Length() > 0
}

// first returns the first match of selector under sel, if any.
func first(sel *goquery.Selection, selector string) (*goquery.Selection, bool) {
	s := sel.Find(selector).First()
	return s, s.Length() > 0
}

func href(link *goquery.Selection) string {
	v, _ := link.Attr("href")
	return strings.TrimSpace(v)
}

func match(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return clean(m[1]), true
}

// clean trims the string and collapses runs of whitespace to one space.
func clean(s string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
