package follows

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/croxxed/mangamux/internal/store"
)

// parseCSV is header-aware: columns are mapped by normalized header name
// so "Last Read" and "last_read" both work. Rows without a title are
// skipped.
func parseCSV(r io.Reader) ([]store.FollowedWork, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}

	get := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []store.FollowedWork
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		title := get(rec, "title")
		if title == "" {
			continue
		}

		work := store.FollowedWork{
			ID:     uuid.New().String(),
			Title:  title,
			URL:    get(rec, "url"),
			Source: get(rec, "source"),
			Status: get(rec, "status"),
		}
		if v := get(rec, "last_read"); v != "" {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				work.ImportedProgress = n
			}
		}
		out = append(out, work)
	}
	return out, nil
}

// normalizeHeader folds header spellings to one canonical form.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return h
}
