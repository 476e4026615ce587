package consensus

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/croxxed/mangamux/internal/source"
)

func records(numbers ...string) []source.ChapterRecord {
	out := make([]source.ChapterRecord, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, source.ChapterRecord{Number: n})
	}
	return out
}

func TestValidatedLatestEmpty(t *testing.T) {
	assert.Equal(t, 0.0, ValidatedLatest(nil))
	assert.Equal(t, 0.0, ValidatedLatest(records("extra", "oneshot", "")))
}

func TestValidatedLatestSmallListTrustsMax(t *testing.T) {
	// Five or fewer numbers cannot show a release pattern.
	assert.Equal(t, 5.0, ValidatedLatest(records("1", "2", "3", "4", "5")))
	assert.Equal(t, 104.5, ValidatedLatest(records("104.5", "104", "103.5")))
}

func TestValidatedLatestRejectsScrapedBanner(t *testing.T) {
	// A "chapter 500" ad element amid a run of 101..105.
	got := ValidatedLatest(records("500", "105", "104", "103", "102", "101"))
	assert.Equal(t, 105.0, got)
}

func TestValidatedLatestDenseListWithFakeTop(t *testing.T) {
	ch := records("1000")
	for i := 1; i <= 20; i++ {
		ch = append(ch, source.ChapterRecord{Number: strconv.Itoa(i)})
	}
	assert.Equal(t, 20.0, ValidatedLatest(ch))
}

func TestValidatedLatestNoPatternTrustsMax(t *testing.T) {
	// Every gap is huge, so nothing is distinguishable from an outlier.
	got := ValidatedLatest(records("1000", "500", "300", "100", "50", "10"))
	assert.Equal(t, 1000.0, got)
}

func TestValidatedLatestKeepsGenuineMax(t *testing.T) {
	got := ValidatedLatest(records("106", "105", "104", "103", "102", "101"))
	assert.Equal(t, 106.0, got)
}

func TestValidatedLatestDropsNonPositive(t *testing.T) {
	assert.Equal(t, 3.0, ValidatedLatest(records("0", "-5", "3")))
}

func TestValidatedLatestUnorderedInput(t *testing.T) {
	got := ValidatedLatest(records("102", "500", "104", "101", "105", "103"))
	assert.Equal(t, 105.0, got)
}
