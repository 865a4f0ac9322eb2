// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rawstore

import (
	"errors"
	"fmt"
)

// ErrFileNotFound is returned when the store or reader target does not
// exist. Errors carrying it also match fs.ErrNotExist.
var ErrFileNotFound = errors.New("record file not found")

// FormatError reports a record file that is not a well-formed JSON array of
// objects. Offset is the byte position at which the problem was detected.
// The file is never repaired automatically.
type FormatError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed record file %s at offset %d: %v", e.Path, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
