package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/metrics"
	"github.com/starford/hookpress/internal/models"
	"github.com/starford/hookpress/internal/shortcode"
)

// Hook names contributed by the plugin.
const (
	HookBootstrap   = "addMdFilesToDataObject"
	HookAllRequests = "mdFilesToAllRequests"
	HookData        = "addFrontmatterAndHtmlToDataForRequest"
)

// Lookup is the outcome of the per-request data hook.
type Lookup int

const (
	// LookupAbsent means the shared data carries no document sequence: the
	// plugin's bootstrap hook did not run.
	LookupAbsent Lookup = iota
	// LookupMissing means documents exist but none matches the request.
	LookupMissing
	// LookupFound means a document matched and was rendered.
	LookupFound
	// LookupNotOwned means the request belongs to a route the plugin does
	// not scan. It is neither logged nor counted.
	LookupNotOwned
)

func (l Lookup) String() string {
	switch l {
	case LookupFound:
		return metrics.LookupFound
	case LookupMissing:
		return metrics.LookupMissing
	case LookupNotOwned:
		return "not_owned"
	default:
		return metrics.LookupAbsent
	}
}

// Plugin aggregates content files and feeds them to the hook pipeline.
type Plugin struct {
	cfg      Config
	owned    map[string]struct{}
	renderer Renderer
	logger   *slog.Logger
	rec      metrics.Recorder
	fsys     fs.FS
	snap     atomic.Pointer[Snapshot]
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithRenderer replaces the goldmark renderer.
func WithRenderer(r Renderer) Option {
	return func(p *Plugin) { p.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) { p.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Plugin) { p.rec = r }
}

// WithFS reads content from fsys instead of the settings' source directory.
func WithFS(fsys fs.FS) Option {
	return func(p *Plugin) { p.fsys = fsys }
}

// New creates the plugin.
func New(cfg Config, opts ...Option) *Plugin {
	p := &Plugin{cfg: cfg, owned: make(map[string]struct{}, len(cfg.Routes))}
	for _, r := range cfg.Routes {
		p.owned[r] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = NewGoldmarkRenderer(cfg.Extensions, cfg.Unsafe, cfg.HeadingIDs)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.rec = metrics.OrNoop(p.rec)
	return p
}

// Name implements hook.Plugin.
func (p *Plugin) Name() string { return "markdown" }

// Init aggregates the content tree and returns hooks bound to the snapshot.
func (p *Plugin) Init(ctx context.Context, settings hook.Settings) (hook.Contribution, error) {
	fsys := p.fsys
	if fsys == nil {
		fsys = os.DirFS(settings.SrcDir)
	}
	snap, err := Aggregate(ctx, fsys, p.cfg, p.logger, p.rec)
	if err != nil {
		return hook.Contribution{}, err
	}
	p.snap.Store(snap)
	p.logger.Info("markdown: content aggregated",
		slog.Int("documents", snap.Len()),
		slog.Int("skipped", len(snap.Diagnostics())))

	return hook.Contribution{
		Hooks:      p.Hooks(snap),
		Shortcodes: []shortcode.Definition{shortcode.Box()},
	}, nil
}

// Snapshot returns the snapshot of the latest successful Init, or nil.
func (p *Plugin) Snapshot() *Snapshot {
	return p.snap.Load()
}

// Hooks returns the bootstrap, allRequests and data hooks over snap.
func (p *Plugin) Hooks(snap *Snapshot) []hook.Hook {
	return []hook.Hook{
		{
			Point:       hook.PointBootstrap,
			Name:        HookBootstrap,
			Description: "Add parsed content files to the data object.",
			Priority:    hook.DefaultPriority,
			Run: func(_ context.Context, pl hook.Payload) (hook.Payload, error) {
				pl.Data = Bootstrap(snap, pl.Data)
				return pl, nil
			},
		},
		{
			Point:       hook.PointAllRequests,
			Name:        HookAllRequests,
			Description: "Add one request per content file to allRequests.",
			Priority:    hook.DefaultPriority,
			Run: func(_ context.Context, pl hook.Payload) (hook.Payload, error) {
				pl.AllRequests = AllRequests(snap, pl.AllRequests)
				return pl, nil
			},
		},
		{
			Point:       hook.PointData,
			Name:        HookData,
			Description: "Add front matter and rendered HTML to the data object of a request.",
			Priority:    hook.DefaultPriority,
			Run: func(ctx context.Context, pl hook.Payload) (hook.Payload, error) {
				data, _, err := p.Data(ctx, pl.Request, pl.Data)
				if err != nil {
					return pl, err
				}
				pl.Data = data
				return pl, nil
			},
		},
	}
}

// Bootstrap returns data extended with the snapshot's documents under
// models.DataMarkdown. data is not modified.
func Bootstrap(snap *Snapshot, data models.Data) models.Data {
	return data.With(models.DataMarkdown, snap.Documents())
}

// AllRequests returns existing followed by the snapshot's requests.
func AllRequests(snap *Snapshot, existing []models.Request) []models.Request {
	out := make([]models.Request, 0, len(existing)+snap.Len())
	out = append(out, existing...)
	return append(out, snap.reqs...)
}

// Data looks up the document addressed by req in data and, when found,
// returns data extended with its front matter and rendered HTML. On any
// other outcome data is returned unchanged. Only requests of scanned routes
// can miss. Render failures wrap apperr.ErrRender.
func (p *Plugin) Data(ctx context.Context, req models.Request, data models.Data) (models.Data, Lookup, error) {
	if _, ok := p.owned[req.Route]; !ok {
		return data, LookupNotOwned, nil
	}
	docs, ok := data.Documents()
	if !ok {
		p.rec.IncLookup(LookupAbsent.String())
		return data, LookupAbsent, nil
	}

	doc, found := find(docs, req)
	if !found {
		p.rec.IncLookup(LookupMissing.String())
		p.logger.Warn("markdown: no document for request",
			slog.String("route", req.Route),
			slog.String("slug", req.Slug))
		return data, LookupMissing, nil
	}

	start := time.Now()
	html, err := p.renderer.Render(ctx, []byte(doc.Body))
	p.rec.ObserveRender(time.Since(start), err == nil)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return data, LookupFound, err
		}
		return data, LookupFound, fmt.Errorf("%w: %s: %v", apperr.ErrRender, doc.Path, err)
	}

	p.rec.IncLookup(LookupFound.String())
	return data.Merge(models.Data{
		models.DataFrontMatter: doc.FrontMatter.Clone(),
		models.DataHTML:        html,
	}), LookupFound, nil
}

func find(docs []models.Document, req models.Request) (models.Document, bool) {
	for _, d := range docs {
		if d.Slug == req.Slug && d.Route == req.Route {
			return d, true
		}
	}
	return models.Document{}, false
}
