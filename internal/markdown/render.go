package markdown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts a markup body to HTML.
type Renderer interface {
	Render(ctx context.Context, body []byte) (string, error)
}

// GoldmarkRenderer renders Markdown with goldmark. The engine is built once
// and is safe for concurrent use.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
}

// NewGoldmarkRenderer builds a renderer with the named extensions. An empty
// list enables GFM; unknown names are ignored. unsafe allows raw HTML and
// headingIDs adds generated id attributes to headings.
func NewGoldmarkRenderer(extensions []string, unsafe, headingIDs bool) *GoldmarkRenderer {
	rendererOptions := []renderer.Option{}
	if unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	opts := []goldmark.Option{
		goldmark.WithExtensions(collectExtensions(extensions)...),
	}
	if headingIDs {
		opts = append(opts, goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	}
	if len(rendererOptions) > 0 {
		opts = append(opts, goldmark.WithRendererOptions(rendererOptions...))
	}
	return &GoldmarkRenderer{engine: goldmark.New(opts...)}
}

// Render implements Renderer.
func (r *GoldmarkRenderer) Render(ctx context.Context, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.engine.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}
	var out []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ext)
	}
	return out
}
