// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/abstract-scraper/internal/progress"
	"github.com/pdiddy/abstract-scraper/internal/rawstore"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

const sampleIndexHTML = `<html><body>
<form><input type="hidden" id="listAB_ID" value="3812345, 3800000,3700000,"></form>
</body></html>`

// newTestServer serves abstract pages at /abstract?id=N. Id 404 returns a
// not-found page with HTTP 404; every other id returns a page with CRLF
// line endings and blank lines.
func newTestServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		switch r.URL.Path {
		case "/index":
			fmt.Fprint(w, sampleIndexHTML)
		case "/abstract":
			id, _ := strconv.Atoi(r.URL.Query().Get("id"))
			if id == 404 {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, "<html>\r\n\r\n<h1>The abstract you requested was not found</h1>\r\n</html>")
				return
			}
			assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
			assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
			fmt.Fprintf(w, "<html>\r\n  \r\n<h1>Paper %d</h1>\r\n\r\n</html>\r\n", id)
		default:
			http.NotFound(w, r)
		}
	}))
}

func testConfig(tsURL string) types.ScrapeConfig {
	return types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "test-agent/1.0",
			Headers:   map[string]string{"Cookie": "session=abc"},
		},
		PageURLTemplate: tsURL + "/abstract?id=%d",
	}
}

func readPages(t *testing.T, path string) []types.RawPage {
	t.Helper()
	var pages []types.RawPage
	require.NoError(t, rawstore.New(path).ReadAll(&pages))
	return pages
}

func TestRun_StoresPages(t *testing.T) {
	var calls int32
	ts := newTestServer(t, &calls)
	defer ts.Close()

	cfg := testConfig(ts.URL)
	store := rawstore.New(filepath.Join(t.TempDir(), "fen_raw_abstracts.json"))

	var out bytes.Buffer
	summary, err := Run(context.Background(), NewHTTPFetcher(cfg.HTTPConfig), store, []int{30, 404, 10}, cfg, progress.Nop{}, &out)
	require.NoError(t, err)

	assert.Equal(t, Summary{Stored: 2, Errored: 1}, summary)
	assert.Equal(t, 3, summary.Total())
	assert.Contains(t, out.String(), "id 404 returned HTTP 404")

	pages := readPages(t, store.Path())
	require.Len(t, pages, 3)
	assert.Equal(t, types.RawPage{
		ID:         30,
		URL:        ts.URL + "/abstract?id=30",
		StatusCode: 200,
		HTML:       "<html>\n<h1>Paper 30</h1>\n</html>",
	}, pages[0])
	assert.True(t, pages[1].Error)
	assert.Equal(t, 404, pages[1].StatusCode)
	assert.Equal(t, 10, pages[2].ID)
}

func TestRun_SkipsStoredIDs(t *testing.T) {
	var calls int32
	ts := newTestServer(t, &calls)
	defer ts.Close()

	cfg := testConfig(ts.URL)
	store := rawstore.New(filepath.Join(t.TempDir(), "fen_raw_abstracts.json"))
	fetcher := NewHTTPFetcher(cfg.HTTPConfig)

	_, err := Run(context.Background(), fetcher, store, []int{3, 2}, cfg, progress.Nop{}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))

	summary, err := Run(context.Background(), fetcher, store, []int{3, 2, 2, 1}, cfg, progress.Nop{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, Summary{Stored: 1, Skipped: 3}, summary)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	ids, err := store.IDs()
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Len(t, readPages(t, store.Path()), 3)
}

type failingFetcher struct {
	failOn int
	n      int
}

func (f *failingFetcher) Fetch(_ context.Context, url string) (*Response, error) {
	f.n++
	if f.n == f.failOn {
		return nil, errors.New("connection reset")
	}
	return &Response{StatusCode: 200, Body: "<html>" + url + "</html>"}, nil
}

func TestRun_TransportErrorStops(t *testing.T) {
	store := rawstore.New(filepath.Join(t.TempDir(), "fen_raw_abstracts.json"))
	cfg := types.ScrapeConfig{PageURLTemplate: "https://papers.example.com/abstract_id=%d"}

	summary, err := Run(context.Background(), &failingFetcher{failOn: 2}, store, []int{9, 8, 7}, cfg, progress.Nop{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching id 8")
	assert.Equal(t, 1, summary.Stored)

	pages := readPages(t, store.Path())
	require.Len(t, pages, 1)
	assert.Equal(t, 9, pages[0].ID)
}

func TestRun_CorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fen_raw_abstracts.json")
	require.NoError(t, os.WriteFile(path, []byte("[\n{\"id\": 1},\n{\"id"), 0o644))

	_, err := Run(context.Background(), &failingFetcher{}, rawstore.New(path), []int{2}, types.ScrapeConfig{}, progress.Nop{}, &bytes.Buffer{})
	var fe *rawstore.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := rawstore.New(filepath.Join(t.TempDir(), "fen_raw_abstracts.json"))
	_, err := Run(ctx, &failingFetcher{}, store, []int{1}, types.ScrapeConfig{}, progress.Nop{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, store.Path())
}

func TestFetchIndex(t *testing.T) {
	var calls int32
	ts := newTestServer(t, &calls)
	defer ts.Close()

	fetcher := NewHTTPFetcher(types.HTTPConfig{Timeout: 5 * time.Second})
	ids, err := FetchIndex(context.Background(), fetcher, ts.URL+"/index")
	require.NoError(t, err)
	assert.Equal(t, []int{3812345, 3800000, 3700000}, ids)

	_, err = FetchIndex(context.Background(), fetcher, ts.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestParseIndex_Errors(t *testing.T) {
	_, err := ParseIndex(`<html><body>nothing here</body></html>`)
	assert.ErrorContains(t, err, "listAB_ID")

	_, err = ParseIndex(`<input id="listAB_ID" value="12,abc">`)
	assert.ErrorContains(t, err, `"abc"`)
}

func TestReadIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fen_ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("10\n 300\n\n25\n7\n"), 0o644))

	ids, err := ReadIDs(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{300, 25, 10, 7}, ids)

	ids, err = ReadIDs(path, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{300, 25}, ids)

	require.NoError(t, os.WriteFile(path, []byte("10\nx1\n"), 0o644))
	_, err = ReadIDs(path, 0)
	assert.ErrorContains(t, err, "line 2")
}

func TestWriteIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "fen_ids.txt")
	require.NoError(t, WriteIDs(path, []int{5, 3, 9}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "5\n3\n9", string(data))

	ids, err := ReadIDs(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 5, 3}, ids)
}

func TestRemoveBlankLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\n\r\n  \r\nb\r\n", "a\nb"},
		{"lf", "a\n\n\tb", "a\n\tb"},
		{"empty", "", ""},
		{"only blank", "\r\n \r\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveBlankLines(tt.in))
		})
	}
}
