package consensus

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/croxxed/mangamux/internal/resolve"
	"github.com/croxxed/mangamux/internal/source"
)

// Sampling and refinement tunables, kept exactly as tuned.
const (
	// DefaultMaxSources is how many resolved candidates a full
	// consensus run samples.
	DefaultMaxSources = 5
	// QuickMaxSources trades accuracy for fewer network calls.
	QuickMaxSources = 3
	// validateMaxSources is the sample size used when second-guessing
	// a reported count.
	validateMaxSources = 4

	// Below refineConfidence with at least refineMinSamples samples,
	// mode consensus is re-examined with median clustering.
	refineConfidence = 60
	refineMinSamples = 3
	// A cluster must cover this fraction of samples to replace the mode.
	clusterFraction = 0.6
	// Cluster tolerance is max(clusterToleranceFloor, 10% of median).
	clusterToleranceFloor = 5
	clusterTolerancePct   = 0.10

	// Validation tolerance is max(validateToleranceFloor, 15% of the
	// consensus count); below validateMinConfidence the reported value
	// is accepted as-is (fail open).
	validateToleranceFloor = 5
	validateTolerancePct   = 0.15
	validateMinConfidence  = 50
)

// SourceCount is one provider's reported chapter count for a work.
type SourceCount struct {
	SourceName string `json:"sourceName"`
	URL        string `json:"url"`
	Count      int    `json:"count"`
}

// Result is the reconciled chapter count across sources. Confidence 0
// means "unknown", not "zero chapters".
type Result struct {
	Count      int           `json:"count"`
	Confidence int           `json:"confidence"`
	Sources    []SourceCount `json:"sources"`
	AllCounts  []int         `json:"allCounts"`
}

// Validation is the outcome of checking a reported count against
// consensus.
type Validation struct {
	IsReasonable   bool `json:"isReasonable"`
	SuggestedCount int  `json:"suggestedCount"`
	Confidence     int  `json:"confidence"`
}

// Engine derives a trustworthy chapter count from multiple unreliable
// sources.
type Engine struct {
	resolver *resolve.Resolver
	reg      *source.Registry
	log      *slog.Logger
}

// NewEngine builds a consensus engine over the resolver and registry.
func NewEngine(resolver *resolve.Resolver, reg *source.Registry, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{resolver: resolver, reg: reg, log: log}
}

// Consensus resolves the work, samples chapter counts from up to
// maxSources top candidates, and reconciles them. A source whose fetch
// fails or returns nothing is excluded from the sample, not counted as
// zero.
func (e *Engine) Consensus(ctx context.Context, title, knownURL string, maxSources int) *Result {
	if maxSources <= 0 {
		maxSources = DefaultMaxSources
	}

	candidates := e.resolver.Resolve(ctx, title, knownURL, nil)
	if len(candidates) > maxSources {
		candidates = candidates[:maxSources]
	}

	sources := e.sampleCounts(ctx, candidates)
	return reconcile(sources)
}

// QuickCount returns only the consensus count, sampled from fewer
// sources.
func (e *Engine) QuickCount(ctx context.Context, title, knownURL string) int {
	return e.Consensus(ctx, title, knownURL, QuickMaxSources).Count
}

// ValidateChapterCount checks a reported chapter count against a fresh
// consensus. When consensus itself is weak the reported value is assumed
// fine: an unverifiable count is not evidence of a wrong count.
func (e *Engine) ValidateChapterCount(ctx context.Context, reported int, title, knownURL string) Validation {
	res := e.Consensus(ctx, title, knownURL, validateMaxSources)
	if res.Confidence < validateMinConfidence {
		return Validation{IsReasonable: true, SuggestedCount: reported, Confidence: 0}
	}

	tolerance := int(math.Floor(float64(res.Count) * validateTolerancePct))
	if tolerance < validateToleranceFloor {
		tolerance = validateToleranceFloor
	}

	diff := reported - res.Count
	if diff < 0 {
		diff = -diff
	}
	return Validation{
		IsReasonable:   diff <= tolerance,
		SuggestedCount: res.Count,
		Confidence:     res.Confidence,
	}
}

// sampleCounts fetches chapter lists for the selected candidates
// concurrently and keeps the usable ones in candidate order.
func (e *Engine) sampleCounts(ctx context.Context, candidates []resolve.ScoredCandidate) []SourceCount {
	slots := make([]*SourceCount, len(candidates))

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c resolve.ScoredCandidate) {
			defer wg.Done()
			chapters, err := e.reg.Chapters(ctx, c.ProviderName, c.URL)
			if err != nil {
				e.log.Warn("chapter fetch failed",
					"provider", c.ProviderName, "url", c.URL, "err", err)
				return
			}
			if len(chapters) == 0 {
				return
			}
			slots[i] = &SourceCount{
				SourceName: c.ProviderName,
				URL:        c.URL,
				Count:      len(chapters),
			}
		}(i, c)
	}
	wg.Wait()

	out := make([]SourceCount, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// reconcile turns sampled counts into a single value with a confidence.
func reconcile(sources []SourceCount) *Result {
	allCounts := make([]int, len(sources))
	for i, s := range sources {
		allCounts[i] = s.Count
	}

	switch len(sources) {
	case 0:
		return &Result{Count: 0, Confidence: 0, Sources: []SourceCount{}, AllCounts: []int{}}
	case 1:
		return &Result{Count: sources[0].Count, Confidence: 100, Sources: sources, AllCounts: allCounts}
	}

	count, confidence := modeConsensus(allCounts)

	if confidence < refineConfidence && len(allCounts) >= refineMinSamples {
		if c, conf, ok := clusterConsensus(allCounts); ok {
			count, confidence = c, conf
		}
	}

	return &Result{Count: count, Confidence: confidence, Sources: sources, AllCounts: allCounts}
}

// modeConsensus picks the most frequent count; ties keep the earliest
// sampled value. Confidence is the mode's share of the sample.
func modeConsensus(counts []int) (int, int) {
	freq := make(map[int]int, len(counts))
	for _, c := range counts {
		freq[c]++
	}

	mode, modeFreq := counts[0], 0
	for _, c := range counts {
		if freq[c] > modeFreq {
			mode, modeFreq = c, freq[c]
		}
	}

	confidence := int(math.Round(float64(modeFreq) / float64(len(counts)) * 100))
	return mode, confidence
}

// clusterConsensus looks for a majority sub-cluster around the median.
// Sites mirror each other with slight lag, so genuine counts bunch
// together while mis-scrapes land far away. Returns false when no
// cluster covers enough of the sample.
func clusterConsensus(counts []int) (int, int, bool) {
	sorted := append([]int{}, counts...)
	sort.Ints(sorted)

	median := medianOf(sorted)
	tolerance := math.Floor(median * clusterTolerancePct)
	if tolerance < clusterToleranceFloor {
		tolerance = clusterToleranceFloor
	}

	var cluster []int
	for _, c := range sorted {
		if math.Abs(float64(c)-median) <= tolerance {
			cluster = append(cluster, c)
		}
	}

	if float64(len(cluster)) < clusterFraction*float64(len(counts)) {
		return 0, 0, false
	}

	// Cluster is sorted; its lower-middle element is a value actually
	// observed, never fabricated.
	clusterMedian := cluster[(len(cluster)-1)/2]
	confidence := int(math.Round(float64(len(cluster)) / float64(len(counts)) * 100))
	return clusterMedian, confidence, true
}

func medianOf(sorted []int) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
