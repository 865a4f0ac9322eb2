// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rawstore

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/abstract-scraper/pkg/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collect(t *testing.T, path string) ([]types.RawPage, error) {
	t.Helper()
	var pages []types.RawPage
	for p, err := range Records[types.RawPage](path) {
		if err != nil {
			return pages, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func TestRecords_MatchesReadAll(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		s := New(storePath(t))
		for _, p := range samplePages(n) {
			require.NoError(t, s.Append(p))
		}

		var all []types.RawPage
		require.NoError(t, s.ReadAll(&all))

		streamed, err := collect(t, s.Path())
		require.NoError(t, err)
		assert.Equal(t, all, streamed)

		count, err := Count(s.Path())
		require.NoError(t, err)
		assert.Equal(t, n, count)
	}
}

func TestCount_EmptyArray(t *testing.T) {
	for _, content := range []string{"[]", "[\n]\n", "  [ ]  "} {
		count, err := Count(writeFile(t, content))
		require.NoError(t, err)
		assert.Zero(t, count)
	}
}

func TestRecords_Restart(t *testing.T) {
	s := New(storePath(t))
	for _, p := range samplePages(3) {
		require.NoError(t, s.Append(p))
	}

	seq := Records[types.RawPage](s.Path())
	for range 2 {
		var ids []int
		for p, err := range seq {
			require.NoError(t, err)
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []int{5000, 4999, 4998}, ids)
	}
}

func TestRecords_EarlyBreak(t *testing.T) {
	s := New(storePath(t))
	for _, p := range samplePages(5) {
		require.NoError(t, s.Append(p))
	}

	var seen int
	for _, err := range Records[types.RawPage](s.Path()) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(storePath(t))
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = Count(storePath(t))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = collect(t, storePath(t))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRecords_MalformedSurfacesLazily(t *testing.T) {
	path := writeFile(t, "[\n{\"id\": 1},\n{\"id\": 2},\n{\"id\": 3, \"html\": \"<d")

	pages, err := collect(t, path)
	require.Len(t, pages, 2)
	assert.Equal(t, []int{1, 2}, []int{pages[0].ID, pages[1].ID})

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_FormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"object not array", `{"id": 1}`},
		{"scalar elements", `[1, 2]`},
		{"nested array element", `[{"id": 1}, [2]]`},
		{"dangling comma", `[{"id": 1},]`},
		{"unterminated", `[{"id": 1}`},
		{"trailing garbage", `[{"id": 1}] x`},
		{"second array", `[{"id": 1}][]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Open(writeFile(t, tt.content))
			require.NoError(t, err)
			defer r.Close()

			for r.Next() {
			}
			var fe *FormatError
			assert.ErrorAs(t, r.Err(), &fe)
		})
	}
}

func TestReader_DecodeTypeMismatch(t *testing.T) {
	r, err := Open(writeFile(t, `[{"id": "not a number"}]`))
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Next())
	var p types.RawPage
	var fe *FormatError
	assert.ErrorAs(t, r.Decode(&p), &fe)
	assert.JSONEq(t, `{"id": "not a number"}`, string(r.Raw()))
}
