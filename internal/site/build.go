package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/hookpress/internal/metrics"
	"github.com/starford/hookpress/internal/models"
)

// Failure is a request that could not be built.
type Failure struct {
	Request   models.Request `json:"request"`
	Permalink string         `json:"permalink"`
	Error     string         `json:"error"`
}

// Report summarises one build.
type Report struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Pages     int           `json:"pages"`
	Unchanged int           `json:"unchanged"`
	Pruned    int           `json:"pruned"`
	Failures  []Failure     `json:"failures,omitempty"`
	Outcome   string        `json:"outcome"`
}

// OutputPath returns the file a permalink is written to.
func OutputPath(permalink string) string {
	return strings.TrimPrefix(permalink, "/") + "index.html"
}

// Build renders every request of st and writes it to the output storage.
// A failing page is recorded in the report and does not stop the build; only
// context cancellation does. Pages whose output is byte-identical are left
// untouched. After a build without failures, index.html files that no request
// produced are pruned.
func (s *Site) Build(ctx context.Context, st *State) (*Report, error) {
	report := &Report{ID: uuid.NewString(), StartedAt: time.Now()}
	logger := s.logger.With(slog.String("build_id", report.ID))
	logger.Info("site: build started", slog.Int("requests", len(st.requests)))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, req := range st.requests {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			link, _ := st.Permalink(req)
			written, err := s.buildOne(ctx, st, req, link)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("site: page failed",
						slog.String("route", req.Route),
						slog.String("slug", req.Slug),
						slog.String("error", err.Error()))
				}
				report.Failures = append(report.Failures, Failure{Request: req, Permalink: link, Error: err.Error()})
				return nil
			}
			report.Pages++
			if !written {
				report.Unchanged++
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() == nil && len(report.Failures) == 0 {
		pruned, err := s.prune(st)
		if err != nil {
			logger.Warn("site: prune failed", slog.String("error", err.Error()))
		}
		report.Pruned = pruned
	}

	report.Duration = time.Since(report.StartedAt)
	report.Outcome = outcome(report)
	s.rec.ObserveBuild(report.Duration, report.Outcome)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	logger.Info("site: build finished",
		slog.Int("pages", report.Pages),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("pruned", report.Pruned),
		slog.Int("failures", len(report.Failures)),
		slog.String("outcome", report.Outcome),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// buildOne renders one page and reports whether the output file changed.
func (s *Site) buildOne(ctx context.Context, st *State, req models.Request, link string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	page, err := s.Page(ctx, st, req)
	if err != nil {
		return false, err
	}
	out := OutputPath(link)
	if prev, err := s.store.Read(out); err == nil && bytes.Equal(prev, []byte(page.HTML)) {
		return false, nil
	}
	if err := s.store.Write(out, []byte(page.HTML)); err != nil {
		return false, fmt.Errorf("write page: %w", err)
	}
	return true, nil
}

// prune deletes index.html files left by permalinks that no longer exist.
func (s *Site) prune(st *State) (int, error) {
	files, err := s.store.List("", "index.html")
	if err != nil {
		return 0, err
	}
	keep := make(map[string]struct{}, len(st.links))
	for _, link := range st.links {
		keep[OutputPath(link)] = struct{}{}
	}
	pruned := 0
	for _, f := range files {
		if path.Base(f.Path) != "index.html" {
			continue
		}
		if _, ok := keep[f.Path]; ok || strings.HasPrefix(f.Path, AssetsDir+"/") {
			continue
		}
		if err := s.store.Delete(f.Path); err != nil {
			return pruned, err
		}
		s.logger.Info("site: pruned stale page", slog.String("path", f.Path))
		pruned++
	}
	return pruned, nil
}

func outcome(r *Report) string {
	switch {
	case len(r.Failures) == 0:
		return metrics.OutcomeSuccess
	case r.Pages > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeFailed
	}
}
