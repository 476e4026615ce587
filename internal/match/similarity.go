package match

import (
	"strings"
	"unicode/utf8"
)

// Similarity thresholds shared by the resolver.
const (
	// ScoreExact is awarded when two titles are identical after
	// case/whitespace folding.
	ScoreExact = 100
	// ScoreContained is awarded when one title contains the other
	// whole ("Solo Leveling" vs "Solo Leveling: Ragnarok").
	ScoreContained = 90

	minTokenRunes  = 3
	lengthBonusCap = 20
)

// Score rates how likely two title strings denote the same work, 0-100.
// Titles across sites differ by punctuation, translator notes and
// romanization; token overlap with per-token containment plus a length
// proximity bonus approximates human judgment cheaply.
func Score(a, b string) int {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))

	if na == nb {
		return ScoreExact
	}
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return ScoreContained
	}

	tokensA := tokens(na)
	tokensB := tokens(nb)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	matched := 0
	for _, ta := range tokensA {
		for _, tb := range tokensB {
			// Containment either way: "level" matches "leveling".
			if strings.Contains(ta, tb) || strings.Contains(tb, ta) {
				matched++
				break
			}
		}
	}

	denom := len(tokensA)
	if len(tokensB) > denom {
		denom = len(tokensB)
	}
	score := matched * 100 / denom

	// Titles of similar length are more likely the same edition.
	diff := utf8.RuneCountInString(na) - utf8.RuneCountInString(nb)
	if diff < 0 {
		diff = -diff
	}
	if bonus := lengthBonusCap - diff; bonus > 0 {
		score += bonus
	}

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// tokens splits a normalized title into words long enough to carry
// meaning; two-letter particles match everything and score nothing.
func tokens(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenRunes {
			out = append(out, f)
		}
	}
	return out
}

// BestScore returns the maximum Score of candidate against any of the
// known titles. Relevance is always judged against the full alternate
// title set, not just whichever spelling produced the search hit.
func BestScore(candidate string, knownTitles []string) int {
	best := 0
	for _, t := range knownTitles {
		if s := Score(candidate, t); s > best {
			best = s
			if best == ScoreExact {
				break
			}
		}
	}
	return best
}
