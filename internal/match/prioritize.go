package match

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSearchTitles bounds the number of search queries issued per
// provider during resolution.
const MaxSearchTitles = 5

// Priority weights. Latin-script, short, plainly-punctuated titles are
// the ones a provider's own search index is most likely to know.
const (
	weightLatin       = 100
	weightShort       = 50
	weightMedium      = 25
	weightCleanPunct  = 30
	weightFillerWords = 20

	shortTitleRunes  = 30
	mediumTitleRunes = 50
	latinRatio       = 0.8
)

var fillerWords = []string{"the", "of", "a", "in", "and", "to", "my", "no"}

var unusualPunct = "@#$%^*{}[]<>|\\~`"

// PrioritizeSearchTitles ranks the known titles of a work by how likely
// they are to hit a provider's search index and returns at most max of
// them, best first. Ties keep input order, so the primary title wins
// when nothing distinguishes the spellings.
func PrioritizeSearchTitles(titles []string, max int) []string {
	if max <= 0 {
		max = MaxSearchTitles
	}

	type ranked struct {
		title string
		score int
	}
	rankedTitles := make([]ranked, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		rankedTitles = append(rankedTitles, ranked{title: t, score: searchPriority(t)})
	}

	sort.SliceStable(rankedTitles, func(i, j int) bool {
		return rankedTitles[i].score > rankedTitles[j].score
	})

	if len(rankedTitles) > max {
		rankedTitles = rankedTitles[:max]
	}
	out := make([]string, len(rankedTitles))
	for i, r := range rankedTitles {
		out[i] = r.title
	}
	return out
}

func searchPriority(title string) int {
	score := 0

	if mostlyLatin(title) {
		score += weightLatin
	}

	runes := utf8.RuneCountInString(title)
	switch {
	case runes <= shortTitleRunes:
		score += weightShort
	case runes <= mediumTitleRunes:
		score += weightMedium
	}

	if !strings.ContainsAny(title, unusualPunct) {
		score += weightCleanPunct
	}

	lower := strings.ToLower(title)
	for _, w := range fillerWords {
		if containsWord(lower, w) {
			score += weightFillerWords
			break
		}
	}

	return score
}

// mostlyLatin reports whether the letters of a title are predominantly
// Latin script; digits and punctuation do not count against it.
func mostlyLatin(s string) bool {
	letters, latin := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	if letters == 0 {
		return false
	}
	return float64(latin)/float64(letters) >= latinRatio
}

func containsWord(s, w string) bool {
	for _, f := range strings.Fields(s) {
		if strings.Trim(f, ".,:;!?'\"()-") == w {
			return true
		}
	}
	return false
}
