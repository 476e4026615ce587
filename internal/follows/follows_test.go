package follows

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Title,URL,Source,Status,Last Read",
		"Solo Leveling,https://toonily.com/serie/solo-leveling,toonily,reading,110.5",
		"Berserk,,,completed,",
		",https://toonily.com/serie/orphan-row,,reading,3",
	}, "\n")

	works, err := Parse(strings.NewReader(csv), "export.csv")
	require.NoError(t, err)
	require.Len(t, works, 2)

	assert.Equal(t, "Solo Leveling", works[0].Title)
	assert.Equal(t, "https://toonily.com/serie/solo-leveling", works[0].URL)
	assert.Equal(t, "toonily", works[0].Source)
	assert.Equal(t, "reading", works[0].Status)
	assert.Equal(t, 110.5, works[0].ImportedProgress)
	assert.NotEmpty(t, works[0].ID)

	assert.Equal(t, "Berserk", works[1].Title)
	assert.Zero(t, works[1].ImportedProgress)
}

func TestParseCSVHeaderSpellings(t *testing.T) {
	csv := "title,last_read\nBlue Lock,42\n"
	works, err := Parse(strings.NewReader(csv), "export.CSV")
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, 42.0, works[0].ImportedProgress)
}

func TestParseCSVEmpty(t *testing.T) {
	works, err := Parse(strings.NewReader(""), "export.csv")
	require.NoError(t, err)
	assert.Empty(t, works)
}

func TestParseMALXML(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<myanimelist>
  <myinfo>
    <user_name>reader</user_name>
  </myinfo>
  <manga>
    <manga_title>Omniscient Reader</manga_title>
    <my_read_chapters>120</my_read_chapters>
    <my_status>Reading</my_status>
  </manga>
  <manga>
    <manga_title></manga_title>
    <my_read_chapters>1</my_read_chapters>
  </manga>
  <manga>
    <manga_title>Berserk</manga_title>
    <my_read_chapters>364</my_read_chapters>
    <my_status>On-Hold</my_status>
  </manga>
</myanimelist>`

	works, err := Parse(strings.NewReader(xml), "mangalist.xml")
	require.NoError(t, err)
	require.Len(t, works, 2)

	assert.Equal(t, "Omniscient Reader", works[0].Title)
	assert.Equal(t, 120.0, works[0].ImportedProgress)
	assert.Equal(t, "Reading", works[0].Status)
	assert.Empty(t, works[0].URL)

	assert.Equal(t, "Berserk", works[1].Title)
}

func TestParseMALXMLMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("<myanimelist><manga>"), "mangalist.xml")
	assert.Error(t, err)
}

func TestParseUnknownExtension(t *testing.T) {
	_, err := Parse(strings.NewReader("{}"), "export.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown import format")
}
