// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads request credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the trimmed
// contents are the value.
//
// Keys mapped to request headers: cookie (Cookie), user-agent (User-Agent).
// Other files are loaded but ignored by the fetchers.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// headerKeys maps secret file names to the HTTP header they populate.
var headerKeys = map[string]string{
	"cookie":     "Cookie",
	"user-agent": "User-Agent",
}

// Secrets maps secret names to values.
type Secrets map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields no secrets. Unreadable files are reported on w
// and skipped.
func Load(dir string, w io.Writer) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := Secrets{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Keys returns the loaded secret names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Headers returns the request headers carried by the loaded secrets.
func (s Secrets) Headers() map[string]string {
	headers := map[string]string{}
	for key, header := range headerKeys {
		if v, ok := s[key]; ok {
			headers[header] = v
		}
	}
	return headers
}
