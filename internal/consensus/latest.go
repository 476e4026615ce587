package consensus

import (
	"sort"
	"strconv"
	"strings"

	"github.com/croxxed/mangamux/internal/source"
)

// Outlier-detection tunables. These values are empirical: they were
// chosen against real scraped chapter lists and are kept as-is for
// behavior compatibility, not because they are provably optimal.
const (
	// latestSampleSize is how many of the highest chapter numbers are
	// examined for outliers.
	latestSampleSize = 5
	// gapTolerance is the largest chapter-to-chapter step considered a
	// normal release gap when estimating the typical spacing.
	gapTolerance = 10.0
	// minReasonableGaps is the minimum number of plausible gaps needed
	// before any outlier call is made.
	minReasonableGaps = 2
	// diffFloor keeps the rejection threshold sane for very dense lists.
	diffFloor = 3.0
)

// ValidatedLatest computes the most plausible latest chapter number from
// one provider's chapter list, rejecting obviously mis-scraped values
// (a "chapter 1000" banner amid chapters 101..105) and out-of-sequence
// promo chapters. Returns 0 when no chapter number parses.
func ValidatedLatest(chapters []source.ChapterRecord) float64 {
	numbers := parseChapterNumbers(chapters)
	if len(numbers) == 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(numbers)))

	// Too few data points to tell an outlier from a gap.
	if len(numbers) <= latestSampleSize {
		return numbers[0]
	}

	top := numbers[:latestSampleSize]
	diffs := make([]float64, latestSampleSize-1)
	for i := 0; i < latestSampleSize-1; i++ {
		diffs[i] = top[i] - top[i+1]
	}

	var reasonable []float64
	for _, d := range diffs {
		if d <= gapTolerance {
			reasonable = append(reasonable, d)
		}
	}
	if len(reasonable) < minReasonableGaps {
		// No detectable release pattern; trust the maximum.
		return top[0]
	}

	sum := 0.0
	for _, d := range reasonable {
		sum += d
	}
	avg := sum / float64(len(reasonable))
	maxReasonable := avg * 2
	if maxReasonable < diffFloor {
		maxReasonable = diffFloor
	}

	// Walk down from the top: the first chapter that steps down
	// plausibly to its neighbor is the real latest.
	for i := 0; i < latestSampleSize-1; i++ {
		if diffs[i] <= maxReasonable {
			return top[i]
		}
	}

	// Every step is implausible; the smallest of the sample is the
	// most conservative answer left.
	return top[latestSampleSize-1]
}

// parseChapterNumbers extracts positive float chapter numbers, silently
// dropping whatever does not parse. Providers emit gaps, duplicates and
// arbitrary order; none of that matters here.
func parseChapterNumbers(chapters []source.ChapterRecord) []float64 {
	out := make([]float64, 0, len(chapters))
	for _, c := range chapters {
		n, err := strconv.ParseFloat(strings.TrimSpace(c.Number), 64)
		if err != nil || n <= 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}
