package jaho

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// markdownShell wraps goldmark's fragment output in a complete HTML5
// document so the browser renders it standalone.
const markdownShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
</head>
<body>
%s
</body>
</html>`

// markdown is the shared goldmark instance: GFM tables/strikethrough/task
// lists, footnotes, and syntax-highlighted code blocks.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
			highlighting.WithFormatOptions(
				chromahtml.WithLineNumbers(false),
			),
		),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(),
	),
)

// renderMarkdown converts Markdown to a standalone HTML5 document.
func renderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("jaho: rendering markdown: %w", err)
	}
	return fmt.Sprintf(markdownShell, buf.String()), nil
}

// ConvertMarkdown renders a Markdown document and converts the result to a
// PDF document. Empty input fails with [ErrNoContent] before any browser is
// started.
func (c *Converter) ConvertMarkdown(ctx context.Context, source string, cfg *ConvertConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if emptyContent(source) {
		return nil, ErrNoContent
	}
	html, err := renderMarkdown(source)
	if err != nil {
		return nil, err
	}
	return c.render(ctx, setContent(html), cfg)
}

// ConvertMarkdown renders a Markdown document to PDF using a browser process
// scoped to this call.
func ConvertMarkdown(ctx context.Context, source string, cfg *ConvertConfig, opts ...Option) (*Result, error) {
	if emptyContent(source) {
		return nil, ErrNoContent
	}
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertMarkdown(ctx, source, cfg)
}
