package hook

import (
	"context"
	"fmt"
	"sort"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hookpress/internal/models"
)

// Registry holds hooks grouped by point in execution order.
// Hooks are added during bootstrap; runs may happen concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	hooks map[Point][]entry
	seq   int
}

type entry struct {
	Hook
	seq int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[Point][]entry)}
}

// Validate checks that h can be registered.
func (h *Hook) Validate() error {
	if h.Priority == 0 {
		h.Priority = DefaultPriority
	}
	return validation.ValidateStruct(h,
		validation.Field(&h.Name, validation.Required),
		validation.Field(&h.Point, validation.Required, validation.By(func(any) error {
			if !Known(h.Point) {
				return fmt.Errorf("unknown hook point %q", h.Point)
			}
			return nil
		})),
		validation.Field(&h.Priority, validation.Min(MinPriority), validation.Max(MaxPriority)),
		validation.Field(&h.Run, validation.NotNil),
	)
}

// Add registers hooks. A hook name may appear once per point.
func (r *Registry) Add(hooks ...Hook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range hooks {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("hook: invalid hook %q: %w", h.Name, err)
		}
		for _, existing := range r.hooks[h.Point] {
			if existing.Name == h.Name {
				return fmt.Errorf("hook: %q already registered on %s", h.Name, h.Point)
			}
		}
		r.seq++
		list := append(r.hooks[h.Point], entry{Hook: h, seq: r.seq})
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Priority != list[j].Priority {
				return list[i].Priority > list[j].Priority
			}
			return list[i].seq < list[j].seq
		})
		r.hooks[h.Point] = list
	}
	return nil
}

// For returns the hooks of p in execution order.
func (r *Registry) For(p Point) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.hooks[p]
	out := make([]Hook, len(list))
	for i, e := range list {
		out[i] = e.Hook
	}
	return out
}

// Run folds payload through every hook of p.
func (r *Registry) Run(ctx context.Context, p Point, payload Payload) (Payload, error) {
	for _, h := range r.For(p) {
		if err := ctx.Err(); err != nil {
			return payload, err
		}
		next, err := h.Run(ctx, payload)
		if err != nil {
			return payload, fmt.Errorf("hook %s/%s: %w", p, h.Name, err)
		}
		payload = next
	}
	return payload, nil
}

// RunBootstrap runs the bootstrap hooks over data.
func (r *Registry) RunBootstrap(ctx context.Context, data models.Data) (models.Data, error) {
	out, err := r.Run(ctx, PointBootstrap, Payload{Data: data})
	return out.Data, err
}

// RunAllRequests runs the allRequests hooks over requests.
func (r *Registry) RunAllRequests(ctx context.Context, requests []models.Request, data models.Data) ([]models.Request, error) {
	out, err := r.Run(ctx, PointAllRequests, Payload{Data: data, AllRequests: requests})
	return out.AllRequests, err
}

// RunData runs the data hooks for one request.
func (r *Registry) RunData(ctx context.Context, req models.Request, all []models.Request, data models.Data) (models.Data, error) {
	out, err := r.Run(ctx, PointData, Payload{Data: data, Request: req, AllRequests: all})
	return out.Data, err
}

// RunHTML runs the html hooks over a rendered page.
func (r *Registry) RunHTML(ctx context.Context, req models.Request, data models.Data, html string) (string, error) {
	out, err := r.Run(ctx, PointHTML, Payload{Data: data, Request: req, HTML: html})
	return out.HTML, err
}
