// Package parser splits front matter from the markup body of content files.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/models"
)

// Result holds the output of parsing a content file.
type Result struct {
	FrontMatter models.FrontMatter
	Body        string
	Title       string
}

// Only delimited formats are recognised. A body that happens to start with "{"
// (a shortcode, say) must never be mistaken for JSON front matter.
var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// Parse separates the leading front matter block (YAML "---" or TOML "+++")
// from the body. A file without front matter is all body and yields an
// empty, non-nil FrontMatter. A block that fails to decode returns an error
// wrapping apperr.ErrInvalidFrontMatter.
func Parse(data []byte) (*Result, error) {
	var raw map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &raw, formats...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFrontMatter, err)
	}

	fm := make(models.FrontMatter, len(raw))
	for k, v := range raw {
		fm[k] = normalize(v)
	}

	text := string(body)
	if len(body) != len(data) {
		text = strings.TrimLeft(text, "\n\r")
	}
	return &Result{
		FrontMatter: fm,
		Body:        text,
		Title:       deriveTitle(fm, text),
	}, nil
}

// normalize converts any map[interface{}]interface{} values (YAML mappings with
// non-string keys) into map[string]any so front matter stays JSON-encodable.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

// deriveTitle returns the front matter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm models.FrontMatter, body string) string {
	if t := fm.Title(); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
