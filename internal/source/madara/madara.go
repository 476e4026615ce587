// Package madara scrapes sites built on the Madara WordPress theme.
// Dozens of aggregator sites share the theme's markup, so one adapter
// instantiated per site covers a large slice of the fleet.
package madara

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/croxxed/mangamux/internal/source"
)

// Decimal chapter number anywhere in a chapter link's text or href:
// "Chapter 12", "Ch. 12.5", "chapter-104-5".
var (
	reChapterText = regexp.MustCompile(`(?i)(?:chapter|ch\.?)[\s_-]*(\d+(?:\.\d+)?)`)
	reChapterHref = regexp.MustCompile(`(?i)chapter[_-]0*(\d+)(?:[_-](\d+))?`)
)

var releaseDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
	"2006-01-02",
}

// Site is one Madara-theme site adapter.
type Site struct {
	name    string
	baseURL string
	client  *source.HTTPClient
}

// New builds an adapter for one site. Spacing throttles that site only.
func New(name, baseURL string, spacing time.Duration) *Site {
	return &Site{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: source.NewHTTPClient(source.HTTPClientOptions{
			Spacing: spacing,
		}),
	}
}

// NewWithClient is used by tests to inject a stubbed client.
func NewWithClient(name, baseURL string, client *source.HTTPClient) *Site {
	return &Site{name: name, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *Site) Name() string       { return s.name }
func (s *Site) BaseURL() string    { return s.baseURL }
func (s *Site) MetadataOnly() bool { return false }

func (s *Site) fetchDOM(ctx context.Context, target string) (*goquery.Document, error) {
	body, err := s.client.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// Search uses the theme's WordPress search endpoint.
func (s *Site) Search(ctx context.Context, query string) ([]source.Candidate, error) {
	params := url.Values{}
	params.Set("s", query)
	params.Set("post_type", "wp-manga")

	doc, err := s.fetchDOM(ctx, s.baseURL+"/?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", s.name, err)
	}

	var out []source.Candidate
	doc.Find("div.c-tabs-item__content, div.page-item-detail").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find(".post-title a").First()
		href, ok := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if !ok || title == "" {
			return
		}

		cover, _ := sel.Find("img").First().Attr("data-src")
		if cover == "" {
			cover, _ = sel.Find("img").First().Attr("src")
		}

		out = append(out, source.Candidate{
			ID:         href,
			Title:      title,
			URL:        s.resolveURL(href),
			CoverURL:   cover,
			SourceName: s.name,
		})
	})
	return out, nil
}

// GetChapters parses the chapter listing of a manga page. Entries whose
// number cannot be recognized keep an empty Number; the aggregation core
// still counts them.
func (s *Site) GetChapters(ctx context.Context, mangaURL string) ([]source.ChapterRecord, error) {
	doc, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, fmt.Errorf("%s chapters: %w", s.name, err)
	}

	var out []source.ChapterRecord
	seen := map[string]bool{}

	doc.Find("li.wp-manga-chapter").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		chapterURL := s.resolveURL(href)
		if seen[chapterURL] {
			return
		}
		seen[chapterURL] = true

		title := strings.TrimSpace(link.Text())
		record := source.ChapterRecord{
			ID:         href,
			Number:     chapterNumber(href, title),
			Title:      title,
			URL:        chapterURL,
			SourceName: s.name,
		}
		if released := strings.TrimSpace(li.Find("span.chapter-release-date").Text()); released != "" {
			if t, ok := parseReleaseDate(released); ok {
				record.UploadDate = &t
			}
		}
		out = append(out, record)
	})
	return out, nil
}

// GetPages extracts page images from a chapter reader page.
func (s *Site) GetPages(ctx context.Context, chapterURL string) ([]source.Page, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, fmt.Errorf("%s pages: %w", s.name, err)
	}

	var out []source.Page
	doc.Find("div.reading-content img").Each(func(i int, img *goquery.Selection) {
		src, _ := img.Attr("data-src")
		if src == "" {
			src, _ = img.Attr("src")
		}
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}
		out = append(out, source.Page{Index: i, URL: s.resolveURL(src)})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%s pages: no images found at %s", s.name, chapterURL)
	}
	return out, nil
}

// chapterNumber recognizes a decimal chapter number from the link text,
// falling back to the href ("chapter-104-5" means 104.5).
func chapterNumber(href, title string) string {
	if m := reChapterText.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	if m := reChapterHref.FindStringSubmatch(href); m != nil {
		if m[2] != "" {
			return m[1] + "." + m[2]
		}
		return m[1]
	}
	return ""
}

func parseReleaseDate(s string) (time.Time, bool) {
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *Site) resolveURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}
