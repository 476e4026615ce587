package resolve

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/croxxed/mangamux/internal/match"
	"github.com/croxxed/mangamux/internal/source"
)

const (
	// ScoreStrong ends the per-provider title loop early: a candidate
	// this close is the work, no point burning more search calls.
	ScoreStrong = 85
	// ScoreAccept is the floor below which a candidate is noise.
	ScoreAccept = 60

	detailCacheSize = 256
)

// ScoredCandidate is a provider search hit ranked against the full
// alternate-title set of the work being resolved.
type ScoredCandidate struct {
	source.Candidate
	RelevanceScore int    `json:"relevanceScore"`
	ProviderName   string `json:"providerName"`
}

// Resolver finds the same work across every reading provider.
type Resolver struct {
	reg *source.Registry
	log *slog.Logger

	// details lookups are immutable per URL for the lifetime of a run,
	// so repeated resolutions of the same work skip the network.
	detailCache *lru.Cache[string, []string]
}

// New builds a resolver over the given registry.
func New(reg *source.Registry, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	cache, _ := lru.New[string, []string](detailCacheSize)
	return &Resolver{reg: reg, log: log, detailCache: cache}
}

// Resolve searches every enabled reading provider for the work named by
// primaryTitle, optionally enriched by rich metadata behind knownURL, and
// returns all candidates scoring at least ScoreAccept, best first.
// Cross-provider duplicates are kept: each one is a distinct reading
// source for the same work.
func (r *Resolver) Resolve(ctx context.Context, primaryTitle, knownURL string, enabledProviders []string) []ScoredCandidate {
	knownTitles := r.knownTitles(ctx, primaryTitle, knownURL)
	queries := match.PrioritizeSearchTitles(knownTitles, match.MaxSearchTitles)
	if len(queries) == 0 {
		return nil
	}

	providers := r.enabledReadingProviders(enabledProviders)
	buckets := make([][]ScoredCandidate, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p source.Provider) {
			defer wg.Done()
			buckets[i] = r.resolveProvider(ctx, p, queries, knownTitles)
		}(i, p)
	}
	wg.Wait()

	var out []ScoredCandidate
	for _, b := range buckets {
		out = append(out, b...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out
}

// resolveProvider tries prioritized titles in order against one provider
// and keeps the candidates of whichever attempt produced the best single
// score. A title attempt that errors is logged and skipped rather than
// aborting the provider.
func (r *Resolver) resolveProvider(ctx context.Context, p source.Provider, queries, knownTitles []string) []ScoredCandidate {
	bestScore := 0
	var bestKept []ScoredCandidate

	for _, q := range queries {
		found, err := r.reg.Search(ctx, p, q)
		if err != nil {
			r.log.Warn("search attempt failed",
				"provider", p.Name(), "query", q, "err", err)
			continue
		}

		attemptBest := 0
		var kept []ScoredCandidate
		for _, c := range found {
			score := match.BestScore(c.Title, knownTitles)
			if score > attemptBest {
				attemptBest = score
			}
			if score >= ScoreAccept {
				kept = append(kept, ScoredCandidate{
					Candidate:      c,
					RelevanceScore: score,
					ProviderName:   p.Name(),
				})
			}
		}

		if attemptBest > bestScore {
			bestScore = attemptBest
			bestKept = kept
		}
		if bestScore >= ScoreStrong {
			break
		}
	}

	return bestKept
}

// knownTitles assembles the full alternate-title set for the work. When
// knownURL belongs to a detail-capable provider, its metadata (and titles
// mined from the description) widen the set; otherwise the primary title
// stands alone.
func (r *Resolver) knownTitles(ctx context.Context, primaryTitle, knownURL string) []string {
	titles := []string{primaryTitle}

	if knownURL != "" {
		if cached, ok := r.detailCache.Get(knownURL); ok {
			titles = append(titles, cached...)
		} else if p := r.reg.ProviderForURL(knownURL); p != nil {
			if extra := r.fetchTitles(ctx, p, knownURL); extra != nil {
				r.detailCache.Add(knownURL, extra)
				titles = append(titles, extra...)
			}
		}
	}

	return dedupeNormalized(titles)
}

func (r *Resolver) fetchTitles(ctx context.Context, p source.Provider, url string) []string {
	details, err := r.reg.Details(ctx, p, url)
	if err != nil {
		r.log.Warn("metadata fetch failed", "provider", p.Name(), "url", url, "err", err)
		return nil
	}
	extra := append([]string{}, details.AllTitles...)
	extra = append(extra, match.ExtractAlternateTitles(details.Description)...)
	return extra
}

func (r *Resolver) enabledReadingProviders(enabled []string) []source.Provider {
	reading := r.reg.ReadingProviders()
	if enabled == nil {
		return reading
	}
	allow := make(map[string]struct{}, len(enabled))
	for _, name := range enabled {
		allow[name] = struct{}{}
	}
	out := make([]source.Provider, 0, len(reading))
	for _, p := range reading {
		if _, ok := allow[p.Name()]; ok {
			out = append(out, p)
		}
	}
	return out
}

// dedupeNormalized keeps the first spelling of each distinct title under
// canonical normalization, preserving order so the primary title stays
// first.
func dedupeNormalized(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		n := match.Normalize(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, t)
	}
	return out
}
