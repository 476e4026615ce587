// Package follows imports follow lists exported from other services
// into the local store.
package follows

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/croxxed/mangamux/internal/store"
)

// ParseFile dispatches on file extension: .csv for spreadsheet-style
// exports, .xml for MyAnimeList exports.
func ParseFile(path string) ([]store.FollowedWork, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads follow records from r, with the format chosen by the
// filename extension.
func Parse(r io.Reader, filename string) ([]store.FollowedWork, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xml":
		return parseMALXML(r)
	default:
		return nil, fmt.Errorf("unknown import format %q (must be .csv or .xml)", filepath.Ext(filename))
	}
}
