package services

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"html-presenter/internal/document"
	"html-presenter/internal/models"
)

// ErrUnsupportedFormat is returned for uploads that are neither HTML nor Markdown
var ErrUnsupportedFormat = errors.New("unsupported slide format")

const markdownSlide = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; }
.slide-content { box-sizing: border-box; padding: 64px; font-size: 32px; line-height: 1.4; }
.slide-content h1 { font-size: 64px; }
.slide-content pre { font-size: 24px; }
</style>
</head>
<body>
<div class="slide-content" style="width: 1280px; height: 720px">
%s</div>
</body>
</html>
`

// Ingestor turns uploaded files into slides backed by ephemeral content
type Ingestor struct {
	content *ContentStore
	md      goldmark.Markdown
}

// NewIngestor creates an ingestor storing into content
func NewIngestor(content *ContentStore) *Ingestor {
	return &Ingestor{
		content: content,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(goldhtml.WithUnsafe()),
		),
	}
}

// Ingest stores one uploaded file and returns its slide
func (i *Ingestor) Ingest(filename string, data []byte) (models.Slide, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fallback := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var (
		doc   []byte
		title string
	)
	switch ext {
	case ".html", ".htm":
		doc = data
		title = document.ExtractTitle(data)
	case ".md", ".markdown":
		rendered, heading, err := i.renderMarkdown(data)
		if err != nil {
			return models.Slide{}, fmt.Errorf("failed to render %s: %w", filename, err)
		}
		title = heading
		if title == "" {
			title = fallback
		}
		doc = []byte(fmt.Sprintf(markdownSlide, html.EscapeString(title), rendered))
	default:
		return models.Slide{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if title == "" {
		title = fallback
	}

	ref := i.content.Put(doc, "text/html; charset=utf-8")
	return models.Slide{
		ID:         "slide-" + uuid.NewString(),
		Title:      title,
		ContentRef: ref,
	}, nil
}

func (i *Ingestor) renderMarkdown(source []byte) (string, string, error) {
	root := i.md.Parser().Parse(text.NewReader(source))

	var heading string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		lines := h.Lines()
		for j := 0; j < lines.Len(); j++ {
			seg := lines.At(j)
			buf.Write(seg.Value(source))
		}
		heading = strings.TrimSpace(buf.String())
		return ast.WalkStop, nil
	})

	var out bytes.Buffer
	if err := i.md.Renderer().Render(&out, source, root); err != nil {
		return "", "", err
	}
	return out.String(), heading, nil
}
