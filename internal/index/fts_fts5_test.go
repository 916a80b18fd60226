//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts`).Scan(&count); err != nil {
		t.Fatalf("documents_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := Row{
		Route:     "blog",
		Slug:      "fts",
		Title:     "FTS Post",
		Checksum:  "f1",
		Body:      "Hooks make content aggregation powerful and composable.",
		UpdatedAt: time.Now(),
	}
	if err := db.Upsert(row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Slug != "fts" || results[0].Route != "blog" {
		t.Errorf("hit = %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Row{Route: "blog", Slug: "gone", Checksum: "g", Body: "vanishing content", UpdatedAt: time.Now()})
	_ = db.Delete(Key{Route: "blog", Slug: "gone"})

	results, _ := db.Search("vanishing", 10)
	if len(results) != 0 {
		t.Errorf("deleted document still in FTS index: %+v", results)
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.Upsert(Row{Route: "blog", Slug: "evo", Title: "Old", Checksum: "1", Body: "original text", UpdatedAt: now})
	_ = db.Upsert(Row{Route: "blog", Slug: "evo", Title: "New", Checksum: "2", Body: "replacement text", UpdatedAt: now})

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
