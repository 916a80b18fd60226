// Package site drives the hook pipeline: it initialises plugins, collects
// requests from routes, renders pages and writes the static build.
package site

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"

	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/metrics"
	"github.com/starford/hookpress/internal/route"
	"github.com/starford/hookpress/internal/shortcode"
	"github.com/starford/hookpress/internal/storage"
)

//go:embed templates/layout.html
var layoutFS embed.FS

// DefaultConcurrency is the number of pages rendered in parallel by Build.
const DefaultConcurrency = 8

// Site is a configured pipeline. It is immutable after New; every Bootstrap
// produces an independent State.
type Site struct {
	settings    hook.Settings
	plugins     []hook.Plugin
	routes      map[string]route.Route
	routeOrder  []string
	templates   map[string]*template.Template
	layout      *template.Template
	shortcodes  []shortcode.Definition
	open, close string
	concurrency int
	reloadURL   string
	store       storage.Provider
	srcFS       fs.FS
	logger      *slog.Logger
	rec         metrics.Recorder
}

// Option configures a Site.
type Option func(*Site)

// WithPlugins adds plugins, initialised in the given order.
func WithPlugins(p ...hook.Plugin) Option {
	return func(s *Site) { s.plugins = append(s.plugins, p...) }
}

// WithRoutes adds routes.
func WithRoutes(r ...route.Route) Option {
	return func(s *Site) {
		for _, rt := range r {
			if _, exists := s.routes[rt.Name]; !exists {
				s.routeOrder = append(s.routeOrder, rt.Name)
			}
			s.routes[rt.Name] = rt
		}
	}
}

// WithShortcodes adds shortcodes on top of the built-ins.
func WithShortcodes(d ...shortcode.Definition) Option {
	return func(s *Site) { s.shortcodes = append(s.shortcodes, d...) }
}

// WithDelimiters sets the shortcode open and close patterns.
func WithDelimiters(open, close string) Option {
	return func(s *Site) { s.open, s.close = open, close }
}

// WithConcurrency bounds parallel page renders during Build.
func WithConcurrency(n int) Option {
	return func(s *Site) { s.concurrency = n }
}

// WithReloadURL makes every page subscribe to reload events at url.
func WithReloadURL(url string) Option {
	return func(s *Site) { s.reloadURL = url }
}

// WithStorage sets where the build is written.
func WithStorage(p storage.Provider) Option {
	return func(s *Site) { s.store = p }
}

// WithSourceFS reads assets from fsys instead of the source directory.
func WithSourceFS(fsys fs.FS) Option {
	return func(s *Site) { s.srcFS = fsys }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) { s.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Site) { s.rec = r }
}

// New validates routes, parses their templates and prepares the output
// storage.
func New(settings hook.Settings, opts ...Option) (*Site, error) {
	s := &Site{
		settings:    settings,
		routes:      make(map[string]route.Route),
		templates:   make(map[string]*template.Template),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.rec = metrics.OrNoop(s.rec)
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.srcFS == nil && settings.SrcDir != "" {
		s.srcFS = os.DirFS(settings.SrcDir)
	}
	if s.store == nil {
		if settings.DistDir == "" {
			return nil, fmt.Errorf("site: dist dir is required")
		}
		store, err := storage.NewFS(settings.DistDir)
		if err != nil {
			return nil, fmt.Errorf("site: %w", err)
		}
		s.store = store
	}

	for _, name := range s.routeOrder {
		rt := s.routes[name]
		if err := rt.Validate(); err != nil {
			return nil, fmt.Errorf("site: route %q: %w", name, err)
		}
		tmpl, err := template.New(name).Funcs(funcs).Parse(rt.Template)
		if err != nil {
			return nil, fmt.Errorf("site: route %q: parse template: %w", name, err)
		}
		s.templates[name] = tmpl
	}

	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(layoutFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse layout: %w", err)
	}
	s.layout = layout
	return s, nil
}

// Settings returns the settings handed to plugins.
func (s *Site) Settings() hook.Settings { return s.settings }

// Clean empties the output directory.
func (s *Site) Clean() error {
	if err := s.store.Clean(); err != nil {
		return fmt.Errorf("site: clean: %w", err)
	}
	s.logger.Info("site: output cleaned", slog.String("dist", s.settings.DistDir))
	return nil
}

var funcs = template.FuncMap{
	"safe": func(v any) template.HTML {
		str, _ := v.(string)
		return template.HTML(str)
	},
}
