// Package update batches the consensus machinery over followed works and
// turns newly discovered chapters into notifications.
package update

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/croxxed/mangamux/internal/consensus"
	"github.com/croxxed/mangamux/internal/match"
	"github.com/croxxed/mangamux/internal/resolve"
	"github.com/croxxed/mangamux/internal/source"
	"github.com/croxxed/mangamux/internal/store"
)

const (
	// batchSize works are checked concurrently; batches run strictly in
	// sequence with a pause in between, purely for upstream politeness.
	batchSize  = 3
	batchPause = time.Second

	// maxSourcesPerWork bounds chapter fetches per followed work.
	maxSourcesPerWork = 3

	notificationType = "new_chapter"
)

// Storage is what the orchestrator needs from the storage collaborator.
// The store owns notification de-duplication; the orchestrator emits
// every event it finds.
type Storage interface {
	ReadingProgress(workID string) (float64, bool)
	UpdateLastKnownChapter(workID string, chapter float64) error
	InsertNotification(n store.Notification) error
}

// Settings are the caller-supplied knobs for one update run. Passing
// them explicitly keeps the store the single owner of that state.
type Settings struct {
	// NotificationProviders limits resolution to these providers;
	// nil means all reading providers.
	NotificationProviders []string
	// RestrictToKnownSource skips resolution entirely and checks only
	// the source the work was originally followed on.
	RestrictToKnownSource bool
}

// ProgressEvent is delivered after each processed work.
type ProgressEvent struct {
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	Status     string `json:"status"`
	MangaTitle string `json:"mangaTitle,omitempty"`
	Completed  bool   `json:"completed,omitempty"`
}

// ProgressFunc receives progress events. May be nil.
type ProgressFunc func(ProgressEvent)

// Report summarizes one update run.
type Report struct {
	Checked       int                  `json:"checked"`
	NewChapters   int                  `json:"newChapters"`
	Errors        int                  `json:"errors"`
	Notifications []store.Notification `json:"notifications"`
}

// Orchestrator drives update checking across all followed works.
type Orchestrator struct {
	resolver *resolve.Resolver
	reg      *source.Registry
	storage  Storage
	log      *slog.Logger
}

// New builds an orchestrator.
func New(resolver *resolve.Resolver, reg *source.Registry, storage Storage, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{resolver: resolver, reg: reg, storage: storage, log: log}
}

// CheckForUpdates processes works in concurrent batches of batchSize,
// sleeping batchPause between batches. One work's failure increments the
// error counter and the run continues.
func (o *Orchestrator) CheckForUpdates(ctx context.Context, works []store.FollowedWork, settings Settings, progress ProgressFunc) *Report {
	report := &Report{Notifications: []store.Notification{}}
	total := len(works)

	var mu sync.Mutex
	processed := 0

	emit := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for _, work := range works[start:end] {
			wg.Add(1)
			go func(work store.FollowedWork) {
				defer wg.Done()

				notification, err := o.checkWork(ctx, work, settings)

				mu.Lock()
				processed++
				report.Checked++
				status := "checked"
				switch {
				case err != nil:
					report.Errors++
					status = "error"
					o.log.Warn("update check failed", "title", work.Title, "err", err)
				case notification != nil:
					report.NewChapters++
					report.Notifications = append(report.Notifications, *notification)
					status = "new_chapter"
				}
				current := processed
				mu.Unlock()

				emit(ProgressEvent{
					Current:    current,
					Total:      total,
					Status:     status,
					MangaTitle: work.Title,
				})
			}(work)
		}
		wg.Wait()

		if end < total {
			select {
			case <-time.After(batchPause):
			case <-ctx.Done():
				emit(ProgressEvent{Current: processed, Total: total, Status: "cancelled", Completed: true})
				return report
			}
		}
	}

	emit(ProgressEvent{Current: processed, Total: total, Status: "done", Completed: true})
	return report
}

// checkWork resolves one followed work, extracts the best validated
// latest chapter across up to maxSourcesPerWork sources, and emits a
// notification when it beats the user's reading position. A work that
// resolves to nothing is skipped silently.
func (o *Orchestrator) checkWork(ctx context.Context, work store.FollowedWork, settings Settings) (*store.Notification, error) {
	candidates := o.candidatesFor(ctx, work, settings)
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > maxSourcesPerWork {
		candidates = candidates[:maxSourcesPerWork]
	}

	validatedLatest, bestSource := o.bestValidatedLatest(ctx, candidates)
	if validatedLatest <= 0 {
		return nil, nil
	}

	lastRead := o.lastReadChapter(work)
	if validatedLatest <= lastRead {
		return nil, nil
	}

	if err := o.storage.UpdateLastKnownChapter(work.ID, validatedLatest); err != nil {
		return nil, err
	}

	notification := store.Notification{
		ID:                uuid.New().String(),
		Type:              notificationType,
		MangaID:           work.ID,
		Title:             work.Title,
		OldChapter:        lastRead,
		NewChapter:        validatedLatest,
		NextChapterToRead: math.Floor(lastRead) + 1,
		Source:            bestSource.ProviderName,
		SourceURL:         bestSource.URL,
		CreatedAt:         time.Now(),
		Read:              false,
	}
	if err := o.storage.InsertNotification(notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

// candidatesFor either synthesizes the originally-known source or runs a
// full resolution against the notification-enabled providers.
func (o *Orchestrator) candidatesFor(ctx context.Context, work store.FollowedWork, settings Settings) []resolve.ScoredCandidate {
	if settings.RestrictToKnownSource && work.Source != "" && work.URL != "" {
		return []resolve.ScoredCandidate{{
			Candidate: source.Candidate{
				Title:      work.Title,
				URL:        work.URL,
				SourceName: work.Source,
			},
			RelevanceScore: match.ScoreExact,
			ProviderName:   work.Source,
		}}
	}
	return o.resolver.Resolve(ctx, work.Title, work.URL, settings.NotificationProviders)
}

// bestValidatedLatest fetches chapters for each candidate concurrently
// and keeps the maximum outlier-filtered latest chapter, remembering
// which source produced it.
func (o *Orchestrator) bestValidatedLatest(ctx context.Context, candidates []resolve.ScoredCandidate) (float64, resolve.ScoredCandidate) {
	type outcome struct {
		latest float64
		cand   resolve.ScoredCandidate
	}
	results := make([]outcome, len(candidates))

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c resolve.ScoredCandidate) {
			defer wg.Done()
			chapters, err := o.reg.Chapters(ctx, c.ProviderName, c.URL)
			if err != nil {
				o.log.Warn("chapter fetch failed",
					"provider", c.ProviderName, "url", c.URL, "err", err)
				return
			}
			results[i] = outcome{latest: consensus.ValidatedLatest(chapters), cand: c}
		}(i, c)
	}
	wg.Wait()

	best := outcome{}
	for _, r := range results {
		if r.latest > best.latest {
			best = r
		}
	}
	return best.latest, best.cand
}

// lastReadChapter prefers the explicit progress record, then imported
// progress, then the stored last-known chapter.
func (o *Orchestrator) lastReadChapter(work store.FollowedWork) float64 {
	if p, ok := o.storage.ReadingProgress(work.ID); ok {
		return p
	}
	if work.ImportedProgress > 0 {
		return work.ImportedProgress
	}
	if work.LastKnownChapter > 0 {
		return work.LastKnownChapter
	}
	return 0
}
