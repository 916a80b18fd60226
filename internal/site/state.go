package site

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/models"
	"github.com/starford/hookpress/internal/shortcode"
)

// State is the result of one bootstrap: the shared data, every request and
// its permalink. It is never modified, so pages can be rendered from it
// concurrently.
type State struct {
	CreatedAt time.Time

	data      models.Data
	requests  []models.Request
	links     map[string]string
	byLink    map[string]models.Request
	registry  *hook.Registry
	processor *shortcode.Processor
}

// Data returns a copy of the shared data.
func (st *State) Data() models.Data { return st.data.Clone() }

// Requests returns every request in render order.
func (st *State) Requests() []models.Request {
	out := make([]models.Request, len(st.requests))
	copy(out, st.requests)
	return out
}

// Permalink returns the URL path of req.
func (st *State) Permalink(req models.Request) (string, bool) {
	link, ok := st.links[req.Key()]
	return link, ok
}

// Resolve returns the request rendered at permalink.
func (st *State) Resolve(permalink string) (models.Request, bool) {
	req, ok := st.byLink[permalink]
	return req, ok
}

// Hooks returns the registered hooks of p in execution order.
func (st *State) Hooks(p hook.Point) []hook.Hook { return st.registry.For(p) }

// Bootstrap initialises plugins and runs the bootstrap and allRequests
// points. Requests naming an unknown route are dropped with a warning.
func (s *Site) Bootstrap(ctx context.Context) (*State, error) {
	registry := hook.NewRegistry()
	if err := registry.Add(s.copyAssetsHook()); err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	defs := append(shortcode.Builtins(), s.shortcodes...)
	for _, p := range s.plugins {
		contrib, err := p.Init(ctx, s.settings)
		if err != nil {
			return nil, fmt.Errorf("site: plugin %s: %w", p.Name(), err)
		}
		if err := registry.Add(contrib.Hooks...); err != nil {
			return nil, fmt.Errorf("site: plugin %s: %w", p.Name(), err)
		}
		defs = append(defs, contrib.Shortcodes...)
		s.logger.Debug("site: plugin initialised",
			slog.String("plugin", p.Name()),
			slog.Int("hooks", len(contrib.Hooks)))
	}
	processor, err := shortcode.NewProcessor(s.open, s.close, defs...)
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	data, err := registry.RunBootstrap(ctx, models.Data{})
	if err != nil {
		return nil, fmt.Errorf("site: bootstrap: %w", err)
	}

	var requests []models.Request
	for _, name := range s.routeOrder {
		reqs, err := s.routes[name].Requests(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("site: %w", err)
		}
		requests = append(requests, reqs...)
	}
	requests, err = registry.RunAllRequests(ctx, requests, data)
	if err != nil {
		return nil, fmt.Errorf("site: all requests: %w", err)
	}

	st := &State{
		CreatedAt: time.Now(),
		data:      data,
		links:     make(map[string]string, len(requests)),
		byLink:    make(map[string]models.Request, len(requests)),
		registry:  registry,
		processor: processor,
	}
	for _, req := range requests {
		rt, ok := s.routes[req.Route]
		if !ok {
			s.logger.Warn("site: request for unknown route dropped",
				slog.String("route", req.Route),
				slog.String("slug", req.Slug))
			continue
		}
		link := rt.Link(req)
		if prev, dup := st.byLink[link]; dup {
			return nil, fmt.Errorf("%w: %s used by %s and %s", apperr.ErrDuplicatePermalink, link, prev.Key(), req.Key())
		}
		st.byLink[link] = req
		st.links[req.Key()] = link
		st.requests = append(st.requests, req)
	}

	s.logger.Info("site: bootstrapped", slog.Int("requests", len(st.requests)))
	return st, nil
}
