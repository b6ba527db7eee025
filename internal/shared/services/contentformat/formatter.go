// Package contentformat cleans AI-generated text before it leaves the service.
package contentformat

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

type Formatter interface {
	// PlainText strips every tag and returns unescaped text.
	PlainText(raw string) string
	// PreviewHTML renders markdown-ish post text as sanitized HTML.
	PreviewHTML(text string) (string, error)
}

type formatter struct {
	md     goldmark.Markdown
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

func NewFormatter() Formatter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)

	ugc := bluemonday.UGCPolicy()
	ugc.RequireNoFollowOnLinks(true)
	ugc.AddTargetBlankToFullyQualifiedLinks(true)

	return &formatter{
		md:     md,
		strict: bluemonday.StrictPolicy(),
		ugc:    ugc,
	}
}

func (f *formatter) PlainText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(f.strict.Sanitize(raw)))
}

func (f *formatter) PreviewHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := f.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}
	return f.ugc.Sanitize(buf.String()), nil
}
