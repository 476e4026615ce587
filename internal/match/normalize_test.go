package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase and trim", in: "  One Piece ", want: "one piece"},
		{name: "punctuation stripped", in: "Solo Leveling: Ragnarok!", want: "solo leveling ragnarok"},
		{name: "diacritics folded", in: "Hōseki no Kuni", want: "hoseki no kuni"},
		{name: "media suffix dropped", in: "Bocchi the Rock (Manga)", want: "bocchi the rock"},
		{name: "fullwidth folded", in: "ＳＰＹ×ＦＡＭＩＬＹ", want: "spy family"},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
