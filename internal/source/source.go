package source

import (
	"context"
	"time"
)

// Candidate is a single search result as one provider sees it.
type Candidate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	CoverURL    string `json:"coverUrl,omitempty"`
	Description string `json:"description,omitempty"`
	SourceName  string `json:"sourceName"`
}

// ChapterRecord is one chapter of a work on one provider. Number is kept
// as the provider's decimal string ("12", "12.5") because sites disagree
// about fractional chapters; callers parse it when they need math.
type ChapterRecord struct {
	ID         string     `json:"id"`
	Number     string     `json:"number"`
	Title      string     `json:"title,omitempty"`
	URL        string     `json:"url"`
	SourceName string     `json:"sourceName"`
	UploadDate *time.Time `json:"uploadDate,omitempty"`
}

// Page is a single readable page image of a chapter.
type Page struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// MangaDetails is the rich metadata a detail-capable provider can return
// for a known manga URL.
type MangaDetails struct {
	Title       string   `json:"title"`
	AllTitles   []string `json:"allTitles"`
	Description string   `json:"description,omitempty"`
	CoverURL    string   `json:"coverUrl,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// HomeData holds the browse lists a metadata provider exposes.
type HomeData struct {
	Trending []Candidate `json:"trending"`
	Popular  []Candidate `json:"popular"`
	Recent   []Candidate `json:"recent"`
}

// Provider is the capability contract every site adapter implements.
// A provider flagged MetadataOnly supplies rich browse/detail data but is
// not a reading source, so it is skipped by cross-source search fan-out.
type Provider interface {
	Name() string
	BaseURL() string
	MetadataOnly() bool

	Search(ctx context.Context, query string) ([]Candidate, error)
	GetChapters(ctx context.Context, mangaURL string) ([]ChapterRecord, error)
	GetPages(ctx context.Context, chapterURL string) ([]Page, error)
}

// DetailProvider is an optional capability for providers that can return
// alternate titles and other rich metadata for a manga URL.
type DetailProvider interface {
	GetMangaDetails(ctx context.Context, mangaURL string) (*MangaDetails, error)
}

// HomeProvider is an optional capability for providers with browse lists.
type HomeProvider interface {
	Home(ctx context.Context) (*HomeData, error)
}
