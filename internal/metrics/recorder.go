// Package metrics records aggregation, render and build observations.
package metrics

import "time"

// Lookup results reported by the per-request data hook.
const (
	LookupFound   = "found"
	LookupMissing = "missing"
	LookupAbsent  = "absent"
)

// Build outcomes.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Recorder receives observations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	SetDocuments(route string, n int)
	IncInvalidFile(route string)
	IncLookup(result string)
	ObserveRender(d time.Duration, success bool)
	ObservePage(route string, d time.Duration, success bool)
	ObserveBuild(d time.Duration, outcome string)
	IncReload()
}

// NoopRecorder discards everything (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) SetDocuments(string, int)                {}
func (NoopRecorder) IncInvalidFile(string)                   {}
func (NoopRecorder) IncLookup(string)                        {}
func (NoopRecorder) ObserveRender(time.Duration, bool)       {}
func (NoopRecorder) ObservePage(string, time.Duration, bool) {}
func (NoopRecorder) ObserveBuild(time.Duration, string)      {}
func (NoopRecorder) IncReload()                              {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
