package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrioritizeSearchTitlesPrefersLatin(t *testing.T) {
	got := PrioritizeSearchTitles([]string{
		"俺だけレベルアップな件",
		"Solo Leveling",
	}, 5)
	assert.Equal(t, "Solo Leveling", got[0])
}

func TestPrioritizeSearchTitlesPrefersShort(t *testing.T) {
	long := "The Extremely Long Subtitle Edition Of A Work Nobody Searches For Verbatim Ever"
	got := PrioritizeSearchTitles([]string{long, "Omniscient Reader"}, 5)
	assert.Equal(t, "Omniscient Reader", got[0])
}

func TestPrioritizeSearchTitlesCap(t *testing.T) {
	titles := []string{"A Story", "B Story", "C Story", "D Story", "E Story", "F Story", "G Story"}
	got := PrioritizeSearchTitles(titles, 5)
	assert.Len(t, got, 5)
}

func TestPrioritizeSearchTitlesStableOnTies(t *testing.T) {
	// Identical scoring features: input order is preserved, so the
	// primary title stays first.
	got := PrioritizeSearchTitles([]string{"Blue Lock", "Blue Rock"}, 5)
	assert.Equal(t, []string{"Blue Lock", "Blue Rock"}, got)
}

func TestPrioritizeSearchTitlesSkipsEmpty(t *testing.T) {
	got := PrioritizeSearchTitles([]string{"", "  ", "Berserk"}, 5)
	assert.Equal(t, []string{"Berserk"}, got)
}
