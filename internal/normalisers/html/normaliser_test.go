package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

func TestNormaliseStripsMarkup(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>ignored</title><style>body { color: red }</style></head>
<body>
<script>console.log("ignored");</script>
<h1>就業規則</h1>
<p>勤務時間は9時から18時までです。</p>
<!-- internal note -->
<p>休憩は&nbsp;60分&amp;有給です。</p>
</body>
</html>`

	n := New()
	docs, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:      "https://intra.example.com/rules",
		MIMEType: "text/html",
		Content:  []byte(page),
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)

	content := docs[0].Content
	assert.Contains(t, content, "就業規則")
	assert.Contains(t, content, "勤務時間は9時から18時までです。")
	assert.Contains(t, content, "60分&有給です。")
	assert.NotContains(t, content, "ignored")
	assert.NotContains(t, content, "console.log")
	assert.NotContains(t, content, "internal note")
	assert.NotContains(t, content, "<")
	assert.Equal(t, "https://intra.example.com/rules", docs[0].Source())
}

func TestNormaliseBlockElementsBecomeLineBreaks(t *testing.T) {
	n := New()
	docs, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:     "https://intra.example.com/a",
		Content: []byte("<div>first</div><div>second</div>"),
	})

	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", docs[0].Content)
}
