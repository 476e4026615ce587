package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a scriptable Provider for registry tests.
type fakeProvider struct {
	name         string
	baseURL      string
	metadataOnly bool

	searchFn   func(ctx context.Context, query string) ([]Candidate, error)
	chaptersFn func(ctx context.Context, mangaURL string) ([]ChapterRecord, error)
}

func (f *fakeProvider) Name() string       { return f.name }
func (f *fakeProvider) BaseURL() string    { return f.baseURL }
func (f *fakeProvider) MetadataOnly() bool { return f.metadataOnly }

func (f *fakeProvider) Search(ctx context.Context, query string) ([]Candidate, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(ctx, query)
}

func (f *fakeProvider) GetChapters(ctx context.Context, mangaURL string) ([]ChapterRecord, error) {
	if f.chaptersFn == nil {
		return nil, nil
	}
	return f.chaptersFn(ctx, mangaURL)
}

func (f *fakeProvider) GetPages(ctx context.Context, chapterURL string) ([]Page, error) {
	return nil, ErrNotSupported
}

func candidates(names ...string) []Candidate {
	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		out = append(out, Candidate{ID: n, Title: n})
	}
	return out
}

func TestRegistryByName(t *testing.T) {
	reg := NewRegistry(fastCallConfig(), nil, nil, &fakeProvider{name: "alpha"})

	p, err := reg.ByName("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", p.Name())

	_, err = reg.ByName("missing")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestRegistryProviderForURL(t *testing.T) {
	a := &fakeProvider{name: "alpha", baseURL: "https://alpha.example"}
	b := &fakeProvider{name: "beta", baseURL: "https://beta.example"}
	reg := NewRegistry(fastCallConfig(), nil, nil, a, b)

	assert.Equal(t, b, reg.ProviderForURL("https://beta.example/manga/solo-leveling"))
	assert.Nil(t, reg.ProviderForURL("https://unknown.example/manga/x"))
}

func TestRegistryReadingProvidersExcludesMetadataOnly(t *testing.T) {
	reg := NewRegistry(fastCallConfig(), nil, nil,
		&fakeProvider{name: "meta", metadataOnly: true},
		&fakeProvider{name: "reader"},
	)
	reading := reg.ReadingProviders()
	require.Len(t, reading, 1)
	assert.Equal(t, "reader", reading[0].Name())
}

func TestSearchAllIsolatesFailures(t *testing.T) {
	good := &fakeProvider{
		name: "good",
		searchFn: func(ctx context.Context, query string) ([]Candidate, error) {
			return candidates("hit"), nil
		},
	}
	bad := &fakeProvider{
		name: "bad",
		searchFn: func(ctx context.Context, query string) ([]Candidate, error) {
			return nil, errors.New("site down")
		},
	}
	reg := NewRegistry(fastCallConfig(), nil, nil, bad, good)

	got := reg.SearchAll(context.Background(), "anything", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "hit", got[0].ID)
}

func TestSearchAllTruncatesAndKeepsRegistrationOrder(t *testing.T) {
	first := &fakeProvider{
		name: "first",
		searchFn: func(ctx context.Context, query string) ([]Candidate, error) {
			return candidates("f1", "f2", "f3"), nil
		},
	}
	second := &fakeProvider{
		name: "second",
		searchFn: func(ctx context.Context, query string) ([]Candidate, error) {
			return candidates("s1"), nil
		},
	}
	reg := NewRegistry(fastCallConfig(), nil, nil, first, second)

	got := reg.SearchAll(context.Background(), "anything", 2)
	require.Len(t, got, 3)
	assert.Equal(t, "f1", got[0].ID)
	assert.Equal(t, "f2", got[1].ID)
	assert.Equal(t, "s1", got[2].ID)
}

func TestSearchAllSkipsMetadataOnly(t *testing.T) {
	meta := &fakeProvider{
		name:         "meta",
		metadataOnly: true,
		searchFn: func(ctx context.Context, query string) ([]Candidate, error) {
			return candidates("should-not-appear"), nil
		},
	}
	reg := NewRegistry(fastCallConfig(), nil, nil, meta)
	assert.Empty(t, reg.SearchAll(context.Background(), "anything", 0))
}

func TestChaptersUnknownProvider(t *testing.T) {
	reg := NewRegistry(fastCallConfig(), nil, nil)
	_, err := reg.Chapters(context.Background(), "nope", "https://x.example/m/1")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestChaptersPropagatesProviderError(t *testing.T) {
	parseErr := errors.New("selector matched nothing")
	p := &fakeProvider{
		name: "alpha",
		chaptersFn: func(ctx context.Context, mangaURL string) ([]ChapterRecord, error) {
			return nil, parseErr
		},
	}
	reg := NewRegistry(CallConfig{Timeout: 200 * time.Millisecond, Retries: 0, RetryBase: time.Millisecond}, nil, nil, p)
	_, err := reg.Chapters(context.Background(), "alpha", "https://x.example/m/1")
	assert.ErrorIs(t, err, parseErr)
}

func TestDetailsUnsupported(t *testing.T) {
	reg := NewRegistry(fastCallConfig(), nil, nil)
	_, err := reg.Details(context.Background(), &fakeProvider{name: "plain"}, "https://x.example/m/1")
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestHomeNoCapableProvider(t *testing.T) {
	reg := NewRegistry(fastCallConfig(), nil, nil, &fakeProvider{name: "plain"})
	_, err := reg.Home(context.Background())
	assert.ErrorIs(t, err, ErrNotSupported)
}
