// Package route describes the pages a site is made of. A route enumerates its
// requests, maps each request to a permalink, prepares the request's data and
// names the body template that renders it.
package route

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hookpress/internal/models"
)

// AllFunc returns the requests a route renders.
type AllFunc func(ctx context.Context, data models.Data) ([]models.Request, error)

// DataFunc prepares the data of one request. It must not mutate data.
type DataFunc func(ctx context.Context, req models.Request, data models.Data) (models.Data, error)

// PermalinkFunc maps a request to a site-relative URL path.
type PermalinkFunc func(req models.Request) string

// Route is one kind of page.
type Route struct {
	Name      string
	All       AllFunc
	Permalink PermalinkFunc
	Data      DataFunc
	// Template is the html/template source of the page body.
	Template string
}

// Validate checks the route definition.
func (r Route) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Template, validation.Required),
	)
}

// Requests returns the route's requests with Route set. A route without an
// All function renders a single request whose slug is the route name.
func (r Route) Requests(ctx context.Context, data models.Data) ([]models.Request, error) {
	if r.All == nil {
		return []models.Request{{Slug: r.Name, Route: r.Name}}, nil
	}
	reqs, err := r.All(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("route %s: all: %w", r.Name, err)
	}
	out := make([]models.Request, len(reqs))
	for i, req := range reqs {
		req.Route = r.Name
		out[i] = req
	}
	return out, nil
}

// Link returns the permalink of req, defaulting to "/:slug/".
func (r Route) Link(req models.Request) string {
	fn := r.Permalink
	if fn == nil {
		fn = Pattern("/:slug/")
	}
	return Normalize(fn(req))
}

// PageData runs the route's data function, or returns data as-is.
func (r Route) PageData(ctx context.Context, req models.Request, data models.Data) (models.Data, error) {
	if r.Data == nil {
		return data, nil
	}
	out, err := r.Data(ctx, req, data)
	if err != nil {
		return nil, fmt.Errorf("route %s: data: %w", r.Name, err)
	}
	return out, nil
}

// Pattern builds a permalink function from a placeholder pattern such as
// "/blog/:slug/". Supported placeholders are :slug and :route.
func Pattern(pattern string) PermalinkFunc {
	return func(req models.Request) string {
		return strings.NewReplacer(":slug", req.Slug, ":route", req.Route).Replace(pattern)
	}
}

// Normalize ensures a permalink starts and ends with a slash and has no
// repeated slashes.
func Normalize(p string) string {
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "/"
	}
	return "/" + strings.Join(kept, "/") + "/"
}
