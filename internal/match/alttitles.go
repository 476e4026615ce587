package match

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Free-text descriptions frequently smuggle the work's other names in
// semi-structured prose. These patterns cover the labels scanlation
// sites actually use.
var altTitleLabels = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:alternative(?:\s+(?:name|title))?s?|also\s+known\s+as|a\.?k\.?a\.?|other\s+names?)\s*[:：]\s*([^\n]+)`),
	regexp.MustCompile(`(?i)(?:associated\s+names?)\s*[:：]\s*([^\n]+)`),
}

// Bracketed romanized/original titles, e.g. 「俺だけレベルアップな件」
// or parentheticals trailing the main title.
var reBracketed = regexp.MustCompile(`[「『]([^」』]{3,80})[」』]`)

var altSeparators = regexp.MustCompile(`\s*[;,/|]\s*`)

const (
	maxExtractedTitles = 10
	nearDuplicateDist  = 2
)

// ExtractAlternateTitles mines a free-text description for alternate
// title spellings. Best effort: an empty result just means the resolver
// proceeds with the titles it already has.
func ExtractAlternateTitles(freeText string) []string {
	if strings.TrimSpace(freeText) == "" {
		return nil
	}

	var raw []string
	for _, re := range altTitleLabels {
		for _, m := range re.FindAllStringSubmatch(freeText, -1) {
			raw = append(raw, altSeparators.Split(m[1], -1)...)
		}
	}
	for _, m := range reBracketed.FindAllStringSubmatch(freeText, -1) {
		raw = append(raw, m[1])
	}

	return dedupeTitles(raw)
}

// dedupeTitles drops empty, over-long and near-duplicate entries. Two
// spellings within a small edit distance of each other add no search
// signal, so only the first survives.
func dedupeTitles(raw []string) []string {
	var out []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || len(t) > 120 {
			continue
		}
		dup := false
		for _, kept := range out {
			if Normalize(kept) == Normalize(t) {
				dup = true
				break
			}
			if fuzzy.LevenshteinDistance(strings.ToLower(kept), strings.ToLower(t)) <= nearDuplicateDist {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		out = append(out, t)
		if len(out) >= maxExtractedTitles {
			break
		}
	}
	return out
}
