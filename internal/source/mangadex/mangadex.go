// Package mangadex adapts the MangaDex JSON API. It is the designated
// metadata provider: rich titles, descriptions and browse lists, but not
// a reading source, so it is excluded from cross-source search fan-out.
package mangadex

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/croxxed/mangamux/internal/source"
)

const (
	siteURL = "https://mangadex.org"
	apiURL  = "https://api.mangadex.org"

	searchLimit  = 20
	chapterLimit = 500
	homeLimit    = 10

	// The API allows 5 req/s; stay well under it.
	requestSpacing = 250 * time.Millisecond
)

// Provider is the MangaDex adapter.
type Provider struct {
	client *source.HTTPClient
}

// New builds the MangaDex provider with its own rate-limited client.
func New() *Provider {
	return &Provider{
		client: source.NewHTTPClient(source.HTTPClientOptions{
			Spacing: requestSpacing,
		}),
	}
}

// NewWithClient is used by tests to inject a stubbed client.
func NewWithClient(client *source.HTTPClient) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string       { return "mangadex" }
func (p *Provider) BaseURL() string    { return siteURL }
func (p *Provider) MetadataOnly() bool { return true }

// API envelope shapes, trimmed to the fields the aggregator reads.
type mangaList struct {
	Data []manga `json:"data"`
}

type manga struct {
	ID         string `json:"id"`
	Attributes struct {
		Title       map[string]string   `json:"title"`
		AltTitles   []map[string]string `json:"altTitles"`
		Description map[string]string   `json:"description"`
		Status      string              `json:"status"`
	} `json:"attributes"`
}

type chapterList struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Chapter   string     `json:"chapter"`
			Title     string     `json:"title"`
			PublishAt *time.Time `json:"publishAt"`
		} `json:"attributes"`
	} `json:"data"`
}

// Search queries the catalogue by title.
func (p *Provider) Search(ctx context.Context, query string) ([]source.Candidate, error) {
	params := url.Values{}
	params.Set("title", query)
	params.Set("limit", fmt.Sprint(searchLimit))

	var list mangaList
	if err := p.client.GetJSON(ctx, apiURL+"/manga?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("mangadex search: %w", err)
	}

	out := make([]source.Candidate, 0, len(list.Data))
	for _, m := range list.Data {
		out = append(out, source.Candidate{
			ID:          m.ID,
			Title:       preferredTitle(m),
			URL:         siteURL + "/title/" + m.ID,
			Description: m.Attributes.Description["en"],
			SourceName:  p.Name(),
		})
	}
	return out, nil
}

// GetChapters lists English chapters for a manga URL.
func (p *Provider) GetChapters(ctx context.Context, mangaURL string) ([]source.ChapterRecord, error) {
	id, err := mangaID(mangaURL)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprint(chapterLimit))
	params.Add("translatedLanguage[]", "en")
	params.Set("order[chapter]", "desc")

	var list chapterList
	if err := p.client.GetJSON(ctx, apiURL+"/manga/"+id+"/feed?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("mangadex chapters: %w", err)
	}

	out := make([]source.ChapterRecord, 0, len(list.Data))
	for _, c := range list.Data {
		out = append(out, source.ChapterRecord{
			ID:         c.ID,
			Number:     c.Attributes.Chapter,
			Title:      c.Attributes.Title,
			URL:        siteURL + "/chapter/" + c.ID,
			SourceName: p.Name(),
			UploadDate: c.Attributes.PublishAt,
		})
	}
	return out, nil
}

// GetPages is unsupported: this provider is not a reading source.
func (p *Provider) GetPages(ctx context.Context, chapterURL string) ([]source.Page, error) {
	return nil, fmt.Errorf("%w: mangadex pages", source.ErrNotSupported)
}

// GetMangaDetails returns the full alternate-title set for a manga URL,
// keeping English and romanized spellings; a resolver searching other
// sites has no use for untransliterated scripts.
func (p *Provider) GetMangaDetails(ctx context.Context, mangaURL string) (*source.MangaDetails, error) {
	id, err := mangaID(mangaURL)
	if err != nil {
		return nil, err
	}

	var single struct {
		Data manga `json:"data"`
	}
	if err := p.client.GetJSON(ctx, apiURL+"/manga/"+id, &single); err != nil {
		return nil, fmt.Errorf("mangadex details: %w", err)
	}
	m := single.Data

	var titles []string
	for lang, t := range m.Attributes.Title {
		if usableLang(lang) && t != "" {
			titles = append(titles, t)
		}
	}
	for _, alt := range m.Attributes.AltTitles {
		for lang, t := range alt {
			if usableLang(lang) && t != "" {
				titles = append(titles, t)
			}
		}
	}

	return &source.MangaDetails{
		Title:       preferredTitle(m),
		AllTitles:   titles,
		Description: m.Attributes.Description["en"],
		Status:      m.Attributes.Status,
	}, nil
}

// Home returns the browse lists shown on a home screen.
func (p *Provider) Home(ctx context.Context) (*source.HomeData, error) {
	trending, err := p.browse(ctx, "order[rating]")
	if err != nil {
		return nil, err
	}
	popular, err := p.browse(ctx, "order[followedCount]")
	if err != nil {
		return nil, err
	}
	recent, err := p.browse(ctx, "order[latestUploadedChapter]")
	if err != nil {
		return nil, err
	}
	return &source.HomeData{Trending: trending, Popular: popular, Recent: recent}, nil
}

func (p *Provider) browse(ctx context.Context, orderKey string) ([]source.Candidate, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprint(homeLimit))
	params.Set(orderKey, "desc")

	var list mangaList
	if err := p.client.GetJSON(ctx, apiURL+"/manga?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("mangadex browse: %w", err)
	}
	out := make([]source.Candidate, 0, len(list.Data))
	for _, m := range list.Data {
		out = append(out, source.Candidate{
			ID:         m.ID,
			Title:      preferredTitle(m),
			URL:        siteURL + "/title/" + m.ID,
			SourceName: p.Name(),
		})
	}
	return out, nil
}

// usableLang accepts English and romanized spellings (ja-ro, ko-ro, ...).
func usableLang(lang string) bool {
	return lang == "en" || strings.HasSuffix(lang, "-ro")
}

// preferredTitle picks a human-friendly display title.
func preferredTitle(m manga) string {
	if t := m.Attributes.Title["en"]; t != "" {
		return t
	}
	for lang, t := range m.Attributes.Title {
		if strings.HasSuffix(lang, "-ro") && t != "" {
			return t
		}
	}
	for _, t := range m.Attributes.Title {
		if t != "" {
			return t
		}
	}
	return ""
}

// mangaID pulls the manga UUID out of a site or API URL.
func mangaID(mangaURL string) (string, error) {
	parsed, err := url.Parse(mangaURL)
	if err != nil {
		return "", fmt.Errorf("parse manga url: %w", err)
	}
	for _, seg := range strings.Split(parsed.Path, "/") {
		if id, err := uuid.Parse(seg); err == nil {
			return id.String(), nil
		}
	}
	return "", fmt.Errorf("no manga id in url %q", mangaURL)
}
