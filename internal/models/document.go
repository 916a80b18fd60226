// Package models defines the domain types shared by the hook pipeline and its plugins.
package models

import "fmt"

// Document is a parsed content file owned by a route. Title is the front
// matter title, else the first "# " heading of Body.
type Document struct {
	Route       string      `json:"route"`
	Slug        string      `json:"slug"`
	Path        string      `json:"path"`
	Title       string      `json:"title,omitempty"`
	Body        string      `json:"body"`
	FrontMatter FrontMatter `json:"frontmatter"`
	Checksum    string      `json:"checksum"`
}

// Request is the minimal unit the pipeline needs to produce one page.
type Request struct {
	Slug  string `json:"slug"`
	Route string `json:"route"`
}

// Key returns "route/slug", unique for a request within a site.
func (r Request) Key() string {
	return r.Route + "/" + r.Slug
}

// Request returns the request that addresses d.
func (d Document) Request() Request {
	return Request{Slug: d.Slug, Route: d.Route}
}

// FrontMatter is the key/value header of a content file.
// The "slug" key is reserved; every other key is passed through untouched.
type FrontMatter map[string]any

// Reserved front matter keys.
const (
	FrontMatterSlug  = "slug"
	FrontMatterTitle = "title"
)

// Slug returns the explicit slug, or "" when absent or empty.
// Non-string scalars are formatted with fmt.Sprint.
func (fm FrontMatter) Slug() string {
	return fm.scalar(FrontMatterSlug)
}

// Title returns the "title" field, or "".
func (fm FrontMatter) Title() string {
	return fm.scalar(FrontMatterTitle)
}

func (fm FrontMatter) scalar(key string) string {
	v, ok := fm[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

// Clone returns a shallow copy of fm.
func (fm FrontMatter) Clone() FrontMatter {
	out := make(FrontMatter, len(fm))
	for k, v := range fm {
		out[k] = v
	}
	return out
}
