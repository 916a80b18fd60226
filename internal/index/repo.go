package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/models"
)

// Key addresses one document.
type Key struct {
	Route string
	Slug  string
}

// Row represents a row in the documents table.
type Row struct {
	Route     string
	Slug      string
	Path      string
	Title     string
	Checksum  string
	Body      string
	UpdatedAt time.Time
}

// Key returns the row's primary key.
func (r Row) Key() Key { return Key{Route: r.Route, Slug: r.Slug} }

// SearchResult represents one search hit.
type SearchResult struct {
	Route   string `json:"route"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RowFromDocument builds the row stored for doc.
func RowFromDocument(doc models.Document) Row {
	title := doc.Title
	if title == "" {
		title = doc.FrontMatter.Title()
	}
	return Row{
		Route:     doc.Route,
		Slug:      doc.Slug,
		Path:      doc.Path,
		Title:     title,
		Checksum:  doc.Checksum,
		Body:      doc.Body,
		UpdatedAt: time.Now().UTC(),
	}
}

// Upsert inserts or replaces a document and its FTS entry within a transaction.
func (db *DB) Upsert(r Row) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (route, slug, path, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(route, slug) DO UPDATE SET
			path       = excluded.path,
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, r.Route, r.Slug, r.Path, r.Title, r.Checksum, r.Body, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	if err := ftsUpsert(tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a document and its FTS entry.
func (db *DB) Delete(k Key) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, k)
	if _, err := tx.Exec(`DELETE FROM documents WHERE route = ? AND slug = ?`, k.Route, k.Slug); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// Get returns one document row, or apperr.ErrNotFound.
func (db *DB) Get(k Key) (*Row, error) {
	var r Row
	err := db.conn.QueryRow(`
		SELECT route, slug, path, title, checksum, body, updated_at
		FROM documents WHERE route = ? AND slug = ?
	`, k.Route, k.Slug).Scan(&r.Route, &r.Slug, &r.Path, &r.Title, &r.Checksum, &r.Body, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: %s/%s: %w", k.Route, k.Slug, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &r, nil
}

// Checksums returns the stored checksum of every indexed document.
func (db *DB) Checksums() (map[Key]string, error) {
	rows, err := db.conn.Query(`SELECT route, slug, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[Key]string)
	for rows.Next() {
		var (
			k  Key
			cs string
		)
		if err := rows.Scan(&k.Route, &k.Slug, &cs); err != nil {
			return nil, err
		}
		out[k] = cs
	}
	return out, rows.Err()
}

// Count returns the number of indexed documents.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
