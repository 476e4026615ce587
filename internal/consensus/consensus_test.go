package consensus

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croxxed/mangamux/internal/resolve"
	"github.com/croxxed/mangamux/internal/source"
)

// countingSite serves one candidate for every query and a chapter list of
// fixed length, or an error.
type countingSite struct {
	name     string
	chapters int
	fetchErr error
}

func (s *countingSite) Name() string       { return s.name }
func (s *countingSite) BaseURL() string    { return "https://" + s.name + ".example" }
func (s *countingSite) MetadataOnly() bool { return false }

func (s *countingSite) Search(ctx context.Context, query string) ([]source.Candidate, error) {
	return []source.Candidate{{
		ID:         s.name + "-1",
		Title:      query,
		URL:        s.BaseURL() + "/manga/1",
		SourceName: s.name,
	}}, nil
}

func (s *countingSite) GetChapters(ctx context.Context, mangaURL string) ([]source.ChapterRecord, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	out := make([]source.ChapterRecord, 0, s.chapters)
	for i := 1; i <= s.chapters; i++ {
		out = append(out, source.ChapterRecord{Number: strconv.Itoa(i), SourceName: s.name})
	}
	return out, nil
}

func (s *countingSite) GetPages(ctx context.Context, chapterURL string) ([]source.Page, error) {
	return nil, source.ErrNotSupported
}

func newTestEngine(sites ...*countingSite) *Engine {
	providers := make([]source.Provider, len(sites))
	for i, s := range sites {
		providers[i] = s
	}
	cfg := source.CallConfig{Timeout: time.Second, Retries: 0, RetryBase: time.Millisecond}
	reg := source.NewRegistry(cfg, nil, nil, providers...)
	return NewEngine(resolve.New(reg, nil), reg, nil)
}

func TestReconcileEmpty(t *testing.T) {
	res := reconcile(nil)
	assert.Equal(t, 0, res.Count)
	assert.Equal(t, 0, res.Confidence)
	assert.Empty(t, res.Sources)
}

func TestReconcileSingleSource(t *testing.T) {
	res := reconcile([]SourceCount{{SourceName: "a", Count: 42}})
	assert.Equal(t, 42, res.Count)
	assert.Equal(t, 100, res.Confidence)
}

func TestReconcileMode(t *testing.T) {
	res := reconcile([]SourceCount{
		{SourceName: "a", Count: 100},
		{SourceName: "b", Count: 100},
		{SourceName: "c", Count: 98},
	})
	assert.Equal(t, 100, res.Count)
	assert.Equal(t, 67, res.Confidence)
}

func TestReconcileClusterRefinement(t *testing.T) {
	// No repeated value, so mode confidence is 25; the median cluster
	// {50, 51, 52} takes over and rejects the mis-scrape at 10.
	res := reconcile([]SourceCount{
		{SourceName: "a", Count: 50},
		{SourceName: "b", Count: 52},
		{SourceName: "c", Count: 51},
		{SourceName: "d", Count: 10},
	})
	assert.Equal(t, 51, res.Count)
	assert.Equal(t, 75, res.Confidence)
}

func TestReconcileClusterTooSmall(t *testing.T) {
	// The values are spread so wide no cluster covers 60% of the
	// sample; the low-confidence mode stands.
	res := reconcile([]SourceCount{
		{SourceName: "a", Count: 10},
		{SourceName: "b", Count: 50},
		{SourceName: "c", Count: 90},
	})
	assert.Equal(t, 10, res.Count)
	assert.Equal(t, 33, res.Confidence)
}

func TestConsensusAcrossProviders(t *testing.T) {
	e := newTestEngine(
		&countingSite{name: "a", chapters: 100},
		&countingSite{name: "b", chapters: 100},
		&countingSite{name: "c", chapters: 98},
	)
	res := e.Consensus(context.Background(), "Blue Lock", "", 0)
	require.Len(t, res.Sources, 3)
	assert.Equal(t, 100, res.Count)
	assert.Equal(t, 67, res.Confidence)
	assert.ElementsMatch(t, []int{100, 100, 98}, res.AllCounts)
}

func TestConsensusExcludesFailedAndEmptySources(t *testing.T) {
	e := newTestEngine(
		&countingSite{name: "down", fetchErr: errors.New("http 503")},
		&countingSite{name: "empty", chapters: 0},
		&countingSite{name: "ok", chapters: 42},
	)
	res := e.Consensus(context.Background(), "Blue Lock", "", 0)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "ok", res.Sources[0].SourceName)
	assert.Equal(t, 42, res.Count)
	assert.Equal(t, 100, res.Confidence)
}

func TestConsensusHonorsMaxSources(t *testing.T) {
	e := newTestEngine(
		&countingSite{name: "a", chapters: 10},
		&countingSite{name: "b", chapters: 10},
		&countingSite{name: "c", chapters: 10},
		&countingSite{name: "d", chapters: 10},
	)
	res := e.Consensus(context.Background(), "Blue Lock", "", 2)
	assert.Len(t, res.Sources, 2)
}

func TestQuickCount(t *testing.T) {
	e := newTestEngine(
		&countingSite{name: "a", chapters: 57},
		&countingSite{name: "b", chapters: 57},
	)
	assert.Equal(t, 57, e.QuickCount(context.Background(), "Blue Lock", ""))
}

func TestValidateChapterCountReasonable(t *testing.T) {
	e := newTestEngine(
		&countingSite{name: "a", chapters: 100},
		&countingSite{name: "b", chapters: 100},
	)
	v := e.ValidateChapterCount(context.Background(), 103, "Blue Lock", "")
	assert.True(t, v.IsReasonable)
	assert.Equal(t, 100, v.SuggestedCount)
	assert.Equal(t, 100, v.Confidence)
}

func TestValidateChapterCountOutOfTolerance(t *testing.T) {
	e := newTestEngine(
		&countingSite{name: "a", chapters: 100},
		&countingSite{name: "b", chapters: 100},
	)
	// Tolerance is max(5, 15% of 100) = 15; 150 is far outside it.
	v := e.ValidateChapterCount(context.Background(), 150, "Blue Lock", "")
	assert.False(t, v.IsReasonable)
	assert.Equal(t, 100, v.SuggestedCount)
}

func TestValidateChapterCountFailsOpen(t *testing.T) {
	// No sources at all: consensus is unknowable, so the reported value
	// is accepted rather than flagged.
	e := newTestEngine()
	v := e.ValidateChapterCount(context.Background(), 77, "Blue Lock", "")
	assert.True(t, v.IsReasonable)
	assert.Equal(t, 77, v.SuggestedCount)
	assert.Equal(t, 0, v.Confidence)
}
