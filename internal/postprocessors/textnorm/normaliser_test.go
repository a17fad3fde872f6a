package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

func TestCleanFoldsWidthVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "full-width ascii becomes half-width",
			input: "ＡＢＣ１２３",
			want:  "ABC123",
		},
		{
			name:  "half-width katakana becomes full-width",
			input: "ｶﾀｶﾅ",
			want:  "カタカナ",
		},
		{
			name:  "plain japanese unchanged",
			input: "経理部の田中です。",
			want:  "経理部の田中です。",
		},
		{
			name:  "plain ascii unchanged",
			input: "hello, world",
			want:  "hello, world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestCleanDropsUnencodableRunes(t *testing.T) {
	// Emoji and NUL have no CP932 representation; they are dropped, not
	// substituted.
	assert.Equal(t, "発表します", Clean("発表します🎉"))
	assert.Equal(t, "ab", Clean("a\x00b"))
	assert.NotContains(t, Clean("価格は€100です"), "€")
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"ＡＢＣ１２３",
		"ｶﾀｶﾅとひらがな",
		"発表します🎉",
		"経理部\n営業部",
		"",
		"①②③㈱",
	}

	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}

func TestFilterAppliesToContentAndMetadata(t *testing.T) {
	doc := domain.Document{
		Content: "ＡＢＣ",
		Metadata: map[string]any{
			domain.MetaSource: "ﾒﾓ.txt",
			domain.MetaPage:   2,
		},
	}

	out := New().Filter(doc)

	assert.Equal(t, "ABC", out.Content)
	assert.Equal(t, "メモ.txt", out.Metadata[domain.MetaSource])
	assert.Equal(t, 2, out.Metadata[domain.MetaPage])

	// The input document is not mutated.
	assert.Equal(t, "ＡＢＣ", doc.Content)
	assert.Equal(t, "ﾒﾓ.txt", doc.Metadata[domain.MetaSource])
}
