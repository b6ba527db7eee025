package contentformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText_StripsMarkup(t *testing.T) {
	f := NewFormatter()

	got := f.PlainText(`  <script>alert(1)</script><b>Ship</b> faster & <i>smarter</i>  `)

	assert.Equal(t, "Ship faster & smarter", got)
}

func TestPlainText_KeepsLineBreaks(t *testing.T) {
	f := NewFormatter()

	assert.Equal(t, "Line one\n\nLine two", f.PlainText("Line one\n\nLine two"))
}

func TestPreviewHTML_RendersAndSanitizes(t *testing.T) {
	f := NewFormatter()

	out, err := f.PreviewHTML("**Bold** take\nsee https://example.com <img src=x onerror=alert(1)>")

	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Bold</strong>")
	assert.Contains(t, out, "<br")
	assert.Contains(t, out, `rel="nofollow`)
	assert.NotContains(t, out, "onerror")
}
