package markdown

import (
	"slices"

	"github.com/starford/hookpress/internal/checksum"
	"github.com/starford/hookpress/internal/models"
)

// Diagnostic records a content file that was skipped during aggregation.
type Diagnostic struct {
	Route string `json:"route"`
	Path  string `json:"path"`
	Err   error  `json:"-"`
}

// Message returns the diagnostic error text.
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// Snapshot is the immutable result of aggregation.
type Snapshot struct {
	docs        []models.Document
	reqs        []models.Request
	diags       []Diagnostic
	index       map[string]map[string]int
	fingerprint string
}

func newSnapshot(docs []models.Document, diags []Diagnostic) *Snapshot {
	s := &Snapshot{
		docs:  docs,
		reqs:  make([]models.Request, len(docs)),
		diags: diags,
		index: make(map[string]map[string]int),
	}
	sums := make([]string, 0, len(docs)*3)
	for i, d := range docs {
		s.reqs[i] = d.Request()
		if s.index[d.Route] == nil {
			s.index[d.Route] = make(map[string]int)
		}
		s.index[d.Route][d.Slug] = i
		sums = append(sums, d.Route, d.Slug, d.Checksum)
	}
	s.fingerprint = checksum.Combine(sums...)
	return s
}

// Documents returns the documents in aggregation order.
func (s *Snapshot) Documents() []models.Document {
	return slices.Clone(s.docs)
}

// Requests returns one request per document, in the same order.
func (s *Snapshot) Requests() []models.Request {
	return slices.Clone(s.reqs)
}

// Diagnostics returns the files skipped under PolicySkip.
func (s *Snapshot) Diagnostics() []Diagnostic {
	return slices.Clone(s.diags)
}

// Lookup finds the document addressed by route and slug.
func (s *Snapshot) Lookup(route, slug string) (models.Document, bool) {
	i, ok := s.index[route][slug]
	if !ok {
		return models.Document{}, false
	}
	return s.docs[i], true
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	return len(s.docs)
}

// Fingerprint identifies the aggregated content; it changes whenever any
// document's route, slug or bytes change.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}
