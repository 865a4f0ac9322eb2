// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rawstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
)

var (
	errNotArray     = errors.New("top-level value is not an array")
	errNotObject    = errors.New("array element is not an object")
	errTrailingData = errors.New("unexpected data after closing ']'")
)

// Reader pulls records one at a time out of a JSON array file. Only the
// current record is held in memory. Problems in the file surface lazily,
// when Next reaches the offending token.
//
// A Reader is not resumable; open a new one to scan again.
//
//	r, err := rawstore.Open(path)
//	...
//	defer r.Close()
//	for r.Next() {
//		var page types.RawPage
//		if err := r.Decode(&page); err != nil { ... }
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	path    string
	f       *os.File
	dec     *json.Decoder
	raw     json.RawMessage
	started bool
	done    bool
	err     error
}

// Open opens the array file at path for streaming. A missing file returns
// an error matching ErrFileNotFound.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Reader{
		path: path,
		f:    f,
		dec:  json.NewDecoder(bufio.NewReader(f)),
	}, nil
}

// Next advances to the next record. It returns false at the end of the
// array or on error; check Err afterwards.
func (r *Reader) Next() bool {
	if r.done || r.err != nil {
		return false
	}

	if !r.started {
		tok, err := r.dec.Token()
		if err != nil {
			r.fail(err)
			return false
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			r.fail(errNotArray)
			return false
		}
		r.started = true
	}

	if !r.dec.More() {
		r.finish()
		return false
	}

	r.raw = r.raw[:0]
	if err := r.dec.Decode(&r.raw); err != nil {
		r.fail(err)
		return false
	}
	if len(r.raw) == 0 || r.raw[0] != '{' {
		r.fail(errNotObject)
		return false
	}
	return true
}

// finish consumes the closing ']' and checks that nothing follows it.
func (r *Reader) finish() {
	tok, err := r.dec.Token()
	if err != nil {
		r.fail(err)
		return
	}
	if d, ok := tok.(json.Delim); !ok || d != ']' {
		r.fail(errNotObject)
		return
	}
	if _, err := r.dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		r.fail(err)
		return
	}
	r.done = true
}

func (r *Reader) fail(err error) {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		err = io.ErrUnexpectedEOF
	case errors.As(err, &syntaxErr),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, errNotArray),
		errors.Is(err, errNotObject),
		errors.Is(err, errTrailingData):
	default:
		r.err = fmt.Errorf("reading %s: %w", r.path, err)
		return
	}
	r.err = &FormatError{Path: r.path, Offset: r.dec.InputOffset(), Err: err}
}

// Decode unmarshals the current record into v.
func (r *Reader) Decode(v any) error {
	if err := json.Unmarshal(r.raw, v); err != nil {
		return &FormatError{Path: r.path, Offset: r.dec.InputOffset(), Err: err}
	}
	return nil
}

// Raw returns the current record's JSON. The slice is reused by Next.
func (r *Reader) Raw() json.RawMessage {
	return r.raw
}

// Err returns the first error encountered by Next.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Records returns a single-use sequence of the records in the array file at
// path, decoded as T. Errors are yielded with a zero T and end the sequence.
// Ranging over it again re-opens and re-scans the file.
func Records[T any](path string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		r, err := Open(path)
		if err != nil {
			yield(zero, err)
			return
		}
		defer r.Close()

		for r.Next() {
			var rec T
			if err := r.Decode(&rec); err != nil {
				yield(zero, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := r.Err(); err != nil {
			yield(zero, err)
		}
	}
}

// Count returns the number of records in the array file at path. It scans
// the whole file once; the result is not cached.
func Count(path string) (int, error) {
	r, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for r.Next() {
		n++
	}
	return n, r.Err()
}
