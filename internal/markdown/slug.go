package markdown

import (
	"path"
	"strings"

	"github.com/starford/hookpress/internal/models"
)

// FileSlug derives a slug from a file name: the final extension is stripped
// and every space becomes a hyphen. Nothing else changes.
func FileSlug(name string) string {
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.ReplaceAll(base, " ", "-")
}

// DeriveSlug returns the explicit front matter slug when present, otherwise
// the file slug.
func DeriveSlug(name string, fm models.FrontMatter) string {
	if s := fm.Slug(); s != "" {
		return s
	}
	return FileSlug(name)
}
