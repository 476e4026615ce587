package follows

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/croxxed/mangamux/internal/store"
)

type malExport struct {
	XMLName xml.Name   `xml:"myanimelist"`
	Entries []malManga `xml:"manga"`
}

type malManga struct {
	Title        string  `xml:"manga_title"`
	ReadChapters float64 `xml:"my_read_chapters"`
	Status       string  `xml:"my_status"`
}

// parseMALXML converts a MyAnimeList manga-list export. MAL entries
// carry no source URL, so the works resolve by title alone on first
// update check.
func parseMALXML(r io.Reader) ([]store.FollowedWork, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read xml: %w", err)
	}

	var export malExport
	if err := xml.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("decode myanimelist export: %w", err)
	}

	out := make([]store.FollowedWork, 0, len(export.Entries))
	for _, e := range export.Entries {
		if e.Title == "" {
			continue
		}
		out = append(out, store.FollowedWork{
			ID:               uuid.New().String(),
			Title:            e.Title,
			ImportedProgress: e.ReadChapters,
			Status:           e.Status,
		})
	}
	return out, nil
}
