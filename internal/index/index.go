package index

// DocumentIndex is what the dev server and MCP tools need from the index.
type DocumentIndex interface {
	Upsert(row Row) error
	Delete(key Key) error
	Get(key Key) (*Row, error)
	Checksums() (map[Key]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
