// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rawstore persists fetched pages as a single JSON array file that
// grows one record at a time, and streams records back out of such files
// without loading the whole array into memory.
//
// File layout written by Store:
//
//	[
//	{ ...record 1... },
//	{ ...record 2... }
//	]
//
// Between appends the file is always a valid JSON array.
package rawstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// scanChunk is the number of bytes read per step of the backward tail scan.
const scanChunk = 512

var (
	errNoClosingBracket = errors.New("closing ']' not found at end of file")
	errNoOpeningBracket = errors.New("opening '[' not found")
)

// Store is an append-only JSON array of records on disk. It owns one file
// path and assumes it is the only writer. No file handle is held between
// calls: every Append opens, modifies, and closes the file, so a crash can
// leave at most one partially written trailing record, which the next
// Append or read reports as a FormatError.
type Store struct {
	path string
}

// New returns a Store for the array file at path. The file is created by
// the first Append.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the store's file path.
func (s *Store) Path() string {
	return s.path
}

// Append adds record to the end of the array without reading or re-parsing
// any earlier record.
//
// When the file does not exist (or is empty) it is created as "[\n" + record
// + "\n]". Otherwise the tail is scanned backward: trailing whitespace is
// skipped, the closing ']' must be found, whitespace before it is skipped,
// and the file is truncated immediately after the last byte of the previous
// record (or after '[' when the array is empty). Then ",\n" + record + "\n]"
// is written at that offset. Only the closing delimiter and the whitespace
// around it are rewritten; every earlier byte is left as is.
func (s *Store) Append(record any) error {
	data, err := marshalRecord(record)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening store %s: %w", s.path, err)
	}

	err = s.appendTo(f, data)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing store %s: %w", s.path, closeErr)
	}
	return err
}

func (s *Store) appendTo(f *os.File, data []byte) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat store %s: %w", s.path, err)
	}

	if info.Size() == 0 {
		var buf bytes.Buffer
		buf.WriteString("[\n")
		buf.Write(data)
		buf.WriteString("\n]")
		if _, err := f.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("writing store %s: %w", s.path, err)
		}
		return nil
	}

	end, empty, err := s.scanTail(f, info.Size())
	if err != nil {
		return err
	}

	if err := f.Truncate(end); err != nil {
		return fmt.Errorf("truncating store %s: %w", s.path, err)
	}

	var buf bytes.Buffer
	if empty {
		buf.WriteString("\n")
	} else {
		buf.WriteString(",\n")
	}
	buf.Write(data)
	buf.WriteString("\n]")
	if _, err := f.WriteAt(buf.Bytes(), end); err != nil {
		return fmt.Errorf("writing store %s: %w", s.path, err)
	}
	return nil
}

// scanTail walks backward from the end of the file and returns the offset
// just past the last byte of the final record, or just past '[' when the
// array holds no records (empty reports that case).
//
// The scan has two phases. First it skips trailing whitespace and expects
// ']'. The bracket itself is not kept; the scan then continues past it,
// skipping the whitespace that separates it from the previous record. The
// first non-whitespace byte found there must be '}' (end of a record) or
// '[' (empty array). Anything else means the tail was cut mid-write.
func (s *Store) scanTail(f *os.File, size int64) (end int64, empty bool, err error) {
	buf := make([]byte, scanChunk)
	foundClose := false
	pos := size

	for pos > 0 {
		n := int64(scanChunk)
		if pos < n {
			n = pos
		}
		start := pos - n
		if _, err := f.ReadAt(buf[:n], start); err != nil && !errors.Is(err, io.EOF) {
			return 0, false, fmt.Errorf("reading store %s: %w", s.path, err)
		}

		for i := n - 1; i >= 0; i-- {
			b := buf[i]
			if isSpace(b) {
				continue
			}
			off := start + i
			if !foundClose {
				if b != ']' {
					return 0, false, &FormatError{Path: s.path, Offset: off, Err: errNoClosingBracket}
				}
				foundClose = true
				continue
			}
			switch b {
			case '}':
				return off + 1, false, nil
			case '[':
				return off + 1, true, nil
			default:
				return 0, false, &FormatError{
					Path:   s.path,
					Offset: off,
					Err:    fmt.Errorf("unexpected %q before closing ']'", b),
				}
			}
		}
		pos = start
	}

	if !foundClose {
		return 0, false, &FormatError{Path: s.path, Offset: 0, Err: errNoClosingBracket}
	}
	return 0, false, &FormatError{Path: s.path, Offset: 0, Err: errNoOpeningBracket}
}

// ReadAll decodes the whole array into v, which must be a pointer to a
// slice. It is meant for small membership checks; use Open or Records to
// iterate large stores.
func (s *Store) ReadAll(v any) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return fmt.Errorf("reading store %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		var offset int64
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			offset = syntaxErr.Offset
		case errors.As(err, &typeErr):
			offset = typeErr.Offset
		}
		return &FormatError{Path: s.path, Offset: offset, Err: err}
	}
	return nil
}

// IDs returns the set of "id" values held in the store. A store that does
// not exist yet has no ids.
func (s *Store) IDs() (map[int]struct{}, error) {
	var entries []struct {
		ID int `json:"id"`
	}
	if err := s.ReadAll(&entries); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return map[int]struct{}{}, nil
		}
		return nil, err
	}

	ids := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		ids[e.ID] = struct{}{}
	}
	return ids, nil
}

// marshalRecord encodes record as 4-space indented JSON without HTML
// escaping and without a trailing newline.
func marshalRecord(record any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(record); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
