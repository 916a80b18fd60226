// Package testutil provides shared test helpers for building sites, content
// trees and indexes.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/index"
	"github.com/starford/hookpress/internal/markdown"
	"github.com/starford/hookpress/internal/route"
	"github.com/starford/hookpress/internal/site"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Content returns a small blog tree: a.md (slug "custom", title "Custom")
// and "b note.md" (slug "b-note").
func Content() fstest.MapFS {
	return fstest.MapFS{
		"routes/blog/a.md":      {Data: []byte("---\nslug: custom\ntitle: Custom\n---\n# Hi")},
		"routes/blog/b note.md": {Data: []byte("plain text about gophers")},
	}
}

// TestDB creates a temporary SQLite index that is automatically closed.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSite builds a site over fsys with the markdown plugin on the blog
// route and the built-in routes. It returns the site and its dist directory.
func TestSite(t *testing.T, fsys fstest.MapFS) (*site.Site, string) {
	t.Helper()
	dist := t.TempDir()
	plugin := markdown.New(markdown.Config{Routes: []string{"blog"}},
		markdown.WithFS(fsys), markdown.WithLogger(Logger()))
	s, err := site.New(hook.Settings{DistDir: dist},
		site.WithPlugins(plugin),
		site.WithRoutes(route.Builtins()...),
		site.WithSourceFS(fsys),
		site.WithLogger(Logger()))
	if err != nil {
		t.Fatal(err)
	}
	return s, dist
}

// TestLive bootstraps TestSite and syncs its documents into db when db is
// non-nil.
func TestLive(t *testing.T, fsys fstest.MapFS, db *index.DB) (*site.Live, string) {
	t.Helper()
	s, dist := TestSite(t, fsys)
	live := site.NewLive(s)
	if _, err := live.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if db != nil {
		if _, err := index.Sync(db, live.Documents(), Logger()); err != nil {
			t.Fatal(err)
		}
	}
	return live, dist
}
