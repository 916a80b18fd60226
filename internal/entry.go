// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/hookpress/internal/api"
	"github.com/starford/hookpress/internal/index"
	"github.com/starford/hookpress/internal/markdown"
	"github.com/starford/hookpress/internal/mcpserver"
	"github.com/starford/hookpress/internal/metrics"
	"github.com/starford/hookpress/internal/route"
	"github.com/starford/hookpress/internal/site"
	"github.com/starford/hookpress/internal/sse"
	"github.com/starford/hookpress/internal/watch"
)

func newApplication(opts []Option) (*application, *slog.Logger, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	settings := app.config.Settings()
	logger.Info("Configuration loaded",
		slog.String("src_dir", settings.SrcDir),
		slog.String("dist_dir", settings.DistDir),
		slog.Any("routes", app.config.Markdown.Routes),
		slog.String("log_level", app.config.App.LogLevel.String()))
	return app, logger, nil
}

// newSite wires the markdown plugin and the built-in routes.
func (app *application) newSite(logger *slog.Logger, rec metrics.Recorder, reloadURL string) (*site.Site, error) {
	cfg := app.config
	plugin := markdown.New(cfg.Markdown,
		markdown.WithLogger(logger),
		markdown.WithRecorder(rec))
	app.plugin = plugin

	opts := []site.Option{
		site.WithPlugins(plugin),
		site.WithRoutes(route.Builtins()...),
		site.WithDelimiters(cfg.Shortcodes.Open, cfg.Shortcodes.Close),
		site.WithConcurrency(cfg.Build.Concurrency),
		site.WithLogger(logger),
		site.WithRecorder(rec),
	}
	if reloadURL != "" {
		opts = append(opts, site.WithReloadURL(reloadURL))
	}
	s, err := site.New(cfg.Settings(), opts...)
	if err != nil {
		return nil, fmt.Errorf("init site: %w", err)
	}
	return s, nil
}

// contentIndex keeps the search index in step with the live state. Sync is
// skipped while the aggregated content fingerprint is unchanged.
type contentIndex struct {
	db     *index.DB
	plugin *markdown.Plugin
	logger *slog.Logger
	synced string
}

// openIndex opens and syncs the content index, or returns nil when the index
// is disabled.
func (app *application) openIndex(live *site.Live, logger *slog.Logger) (*contentIndex, error) {
	if !app.config.Index.Enabled {
		return nil, nil
	}
	db, err := index.Open(app.config.Site.Path(app.config.Index.Path))
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	ci := &contentIndex{db: db, plugin: app.plugin, logger: logger}
	ci.sync(live)
	return ci, nil
}

func (c *contentIndex) sync(live *site.Live) {
	if c == nil {
		return
	}
	var fingerprint string
	if snap := c.plugin.Snapshot(); snap != nil {
		fingerprint = snap.Fingerprint()
		if fingerprint == c.synced {
			c.logger.Debug("index up to date", slog.String("fingerprint", fingerprint))
			return
		}
	}
	stats, err := index.Sync(c.db, live.Documents(), c.logger)
	if err != nil {
		c.logger.Warn("index sync failed", slog.String("error", err.Error()))
		return
	}
	c.synced = fingerprint
	c.logger.Info("index synced",
		slog.Int("upserted", stats.Upserted),
		slog.Int("removed", stats.Removed),
		slog.Int("unchanged", stats.Unchanged))
}

func (c *contentIndex) close() {
	if c != nil {
		_ = c.db.Close()
	}
}

// watchAndReload re-bootstraps live whenever the source tree changes. A
// failed reload keeps the previous state.
func (app *application) watchAndReload(ctx context.Context, live *site.Live, ci *contentIndex, broker *sse.Broker, logger *slog.Logger) error {
	src := live.Site().Settings().SrcDir
	return watch.Watch(ctx, src, app.config.Reload.Debounce, logger, func(ctx context.Context, changes []watch.Change) {
		for _, c := range changes {
			if broker != nil {
				broker.PublishChange(c.Kind, c.Path)
			}
		}
		st, err := live.Reload(ctx)
		if err != nil {
			logger.Error("reload failed, keeping previous state", slog.String("error", err.Error()))
			return
		}
		logger.Info("site reloaded",
			slog.Int("changes", len(changes)),
			slog.Int("requests", len(st.Requests())))
		ci.sync(live)
		if broker != nil {
			broker.Reload(fmt.Sprintf("%d file(s) changed", len(changes)))
		}
	})
}

// Run starts the dev server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheusRecorder(reg)

	// SSE broker.
	broker := sse.NewBroker(cfg.Reload.Throttle)
	defer broker.Close()

	reloadURL := ""
	if cfg.Reload.Enabled {
		reloadURL = cfg.App.HTTP.Prefix + "/api/events"
	}
	s, err := app.newSite(logger, rec, reloadURL)
	if err != nil {
		return err
	}
	live := site.NewLive(s)
	if _, err := live.Reload(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	ci, err := app.openIndex(live, logger)
	if err != nil {
		return err
	}
	defer ci.close()

	// Leave Index nil when disabled so search answers 503.
	deps := api.Deps{
		Live:        live,
		Events:      broker,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Logger:      logger,
	}
	if ci != nil {
		deps.Index = ci.db
	}

	var pages http.Handler = api.NewPageHandler(live, s.Settings().DistDir, logger)
	if prefix := cfg.App.HTTP.Prefix; prefix != "" {
		pages = http.StripPrefix(prefix, pages)
	}

	mount := func(r chi.Router) {
		// Health check endpoints (unauthenticated).
		r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if live.State() == nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"starting"}`))
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		r.Handle("/metrics", metrics.HTTPHandler(reg))

		// Mount API routes under /api.
		r.Mount("/api", api.NewRouter(deps))

		// Everything else is a page or a static file.
		r.Handle("/*", pages)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(6))
	if prefix := cfg.App.HTTP.Prefix; prefix != "" {
		r.Route(prefix, mount)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, prefix+"/", http.StatusFound)
		})
	} else {
		mount(r)
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with live reload.
	if cfg.Reload.Enabled {
		g.Go(func() error {
			if err := app.watchAndReload(gCtx, live, ci, broker, logger); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stop the watcher once the server is down.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// Build bootstraps the site and writes every page to the dist directory. It
// returns an error when any page failed.
func Build(ctx context.Context, opts ...Option) (*site.Report, error) {
	app, logger, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	s, err := app.newSite(logger, metrics.NoopRecorder{}, "")
	if err != nil {
		return nil, err
	}
	st, err := s.Bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	report, err := s.Build(ctx, st)
	if err != nil {
		return report, fmt.Errorf("build: %w", err)
	}
	if n := len(report.Failures); n > 0 {
		return report, fmt.Errorf("build: %d of %d pages failed", n, n+report.Pages)
	}
	return report, nil
}

// Clean empties the dist directory.
func Clean(_ context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := app.newSite(logger, metrics.NoopRecorder{}, "")
	if err != nil {
		return err
	}
	return s.Clean()
}

// ServeMCP bootstraps the site and serves MCP tools over stdio until stdin
// closes. Source changes are picked up when reload is enabled.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := app.newSite(logger, metrics.NoopRecorder{}, "")
	if err != nil {
		return err
	}
	live := site.NewLive(s)
	if _, err := live.Reload(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	ci, err := app.openIndex(live, logger)
	if err != nil {
		return err
	}
	defer ci.close()

	var idx index.DocumentIndex
	if ci != nil {
		idx = ci.db
	}
	srv := mcpserver.New(live, idx, app.version)

	g, gCtx := errgroup.WithContext(ctx)
	if app.config.Reload.Enabled {
		g.Go(func() error {
			if err := app.watchAndReload(gCtx, live, ci, nil, logger); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}
	g.Go(func() error {
		logger.Info("MCP server listening on stdio")
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("mcp: %w", err)
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	return nil
}
