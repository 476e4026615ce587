package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9\s]+`)
	reMultiSpace = regexp.MustCompile(`\s+`)
)

// mediaSuffixes are decorations sites append to the same work's title.
var mediaSuffixes = []string{
	"(manga)",
	"(manhwa)",
	"(manhua)",
	"(webtoon)",
	"@comic",
	"the comic",
}

// stripDiacritics removes combining marks after NFD decomposition.
func stripDiacritics(s string) string {
	decomp := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomp))
	for _, r := range decomp {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize canonicalizes a title for identity comparison across sites:
// width/compatibility folding, diacritics stripped, lowercased, media
// suffixes and punctuation removed, whitespace collapsed. It is used when
// deduplicating alternate-title sets, not by the relevance scorer, which
// deliberately keeps punctuation so substring containment still fires.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// Fold full-width and compatibility forms first (common in
	// romanized titles copied from Japanese sites).
	s = norm.NFKC.String(s)
	s = stripDiacritics(s)
	s = strings.ToLower(s)

	for _, suffix := range mediaSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}

	s = reNonAlnum.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
