package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ProviderInfo is the static capability listing of one registered provider.
type ProviderInfo struct {
	Name    string `json:"name"`
	BaseURL string `json:"baseUrl"`
}

// Registry holds the fixed fleet of providers and fans operations out to
// them. Fan-out calls isolate per-provider failures: a failing provider
// contributes an empty result, never an error.
type Registry struct {
	providers []Provider
	byName    map[string]Provider
	call      CallConfig
	metrics   *Metrics
	log       *slog.Logger
}

// NewRegistry builds a registry over a fixed provider set. Registration
// order is preserved in fan-out output.
func NewRegistry(call CallConfig, metrics *Metrics, log *slog.Logger, providers ...Provider) *Registry {
	if log == nil {
		log = slog.Default()
	}
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Registry{
		providers: providers,
		byName:    byName,
		call:      call,
		metrics:   metrics,
		log:       log,
	}
}

// List returns static info for every registered provider.
func (r *Registry) List() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, ProviderInfo{Name: p.Name(), BaseURL: p.BaseURL()})
	}
	return out
}

// ByName resolves a provider by exact name.
func (r *Registry) ByName(name string) (Provider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return p, nil
}

// ProviderForURL returns the provider whose base URL owns the given URL,
// or nil when no registered provider claims it.
func (r *Registry) ProviderForURL(url string) Provider {
	for _, p := range r.providers {
		if base := p.BaseURL(); base != "" && len(url) >= len(base) && url[:len(base)] == base {
			return p
		}
	}
	return nil
}

// ReadingProviders returns every provider that is a reading source, i.e.
// not flagged metadata-only.
func (r *Registry) ReadingProviders() []Provider {
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if !p.MetadataOnly() {
			out = append(out, p)
		}
	}
	return out
}

// Search runs one provider's search under the timeout/retry race.
func (r *Registry) Search(ctx context.Context, p Provider, query string) ([]Candidate, error) {
	return instrumented(r, p, "search", func() ([]Candidate, error) {
		return withResilience(ctx, r.call, p.Name()+" search", func(ctx context.Context) ([]Candidate, error) {
			return p.Search(ctx, query)
		})
	})
}

// SearchAll fans a query out to every reading provider in parallel. Each
// provider's failure is swallowed (empty contribution) and its results
// are truncated to perProviderLimit. Results are concatenated in
// registration order with no cross-provider re-sorting.
func (r *Registry) SearchAll(ctx context.Context, query string, perProviderLimit int) []Candidate {
	reading := r.ReadingProviders()
	buckets := make([][]Candidate, len(reading))

	var wg sync.WaitGroup
	for i, p := range reading {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			found, err := r.Search(ctx, p, query)
			if err != nil {
				r.log.Warn("provider search failed", "provider", p.Name(), "err", err)
				return
			}
			if perProviderLimit > 0 && len(found) > perProviderLimit {
				found = found[:perProviderLimit]
			}
			buckets[i] = found
		}(i, p)
	}
	wg.Wait()

	var out []Candidate
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

// Chapters dispatches a chapter-list fetch to the named provider. It
// fails only when the provider itself cannot be found; the provider's own
// error is propagated unchanged.
func (r *Registry) Chapters(ctx context.Context, providerName, mangaURL string) ([]ChapterRecord, error) {
	p, err := r.ByName(providerName)
	if err != nil {
		return nil, err
	}
	return instrumented(r, p, "chapters", func() ([]ChapterRecord, error) {
		return withResilience(ctx, r.call, p.Name()+" chapters", func(ctx context.Context) ([]ChapterRecord, error) {
			return p.GetChapters(ctx, mangaURL)
		})
	})
}

// Pages dispatches a page-list fetch to the named provider.
func (r *Registry) Pages(ctx context.Context, providerName, chapterURL string) ([]Page, error) {
	p, err := r.ByName(providerName)
	if err != nil {
		return nil, err
	}
	return instrumented(r, p, "pages", func() ([]Page, error) {
		return withResilience(ctx, r.call, p.Name()+" pages", func(ctx context.Context) ([]Page, error) {
			return p.GetPages(ctx, chapterURL)
		})
	})
}

// Details fetches rich metadata from a detail-capable provider.
func (r *Registry) Details(ctx context.Context, p Provider, mangaURL string) (*MangaDetails, error) {
	dp, ok := p.(DetailProvider)
	if !ok {
		return nil, fmt.Errorf("%w: details on %s", ErrNotSupported, p.Name())
	}
	return instrumented(r, p, "details", func() (*MangaDetails, error) {
		return withResilience(ctx, r.call, p.Name()+" details", func(ctx context.Context) (*MangaDetails, error) {
			return dp.GetMangaDetails(ctx, mangaURL)
		})
	})
}

// Home returns browse lists from the first home-capable provider.
func (r *Registry) Home(ctx context.Context) (*HomeData, error) {
	for _, p := range r.providers {
		hp, ok := p.(HomeProvider)
		if !ok {
			continue
		}
		return instrumented(r, p, "home", func() (*HomeData, error) {
			return withResilience(ctx, r.call, p.Name()+" home", func(ctx context.Context) (*HomeData, error) {
				return hp.Home(ctx)
			})
		})
	}
	return nil, fmt.Errorf("%w: no home-capable provider registered", ErrNotSupported)
}

func instrumented[T any](r *Registry, p Provider, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	r.metrics.IncCall(p.Name(), op)
	val, err := fn()
	r.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		r.metrics.IncError(p.Name())
		if IsTimeout(err) {
			r.metrics.IncTimeout()
		}
	}
	return val, err
}
