package route

import (
	"context"
	"embed"

	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/models"
)

//go:embed templates/*.html
var templates embed.FS

func mustTemplate(name string) string {
	b, err := templates.ReadFile("templates/" + name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// Simple is a single static page explaining how routes work.
func Simple() Route {
	return Route{
		Name: "simple",
		All: func(context.Context, models.Data) ([]models.Request, error) {
			return []models.Request{{Slug: "simple"}}, nil
		},
		Permalink: Pattern("/:slug/"),
		Data: func(_ context.Context, _ models.Request, data models.Data) (models.Data, error) {
			return data.Merge(models.Data{
				"title": "Routes: An Overview",
				"steps": []string{
					"Every route has an all function that returns the requests it renders.",
					"A permalink pattern or function turns each request into a URL.",
					"A data function prepares what the route's template receives.",
					"Plugins can add requests and data through hooks without touching the route.",
				},
			}), nil
		},
		Template: mustTemplate("simple.html"),
	}
}

// Hooks renders one page per hook point, documenting the point.
func Hooks() Route {
	return Route{
		Name: "hooks",
		All: func(context.Context, models.Data) ([]models.Request, error) {
			points := hook.Points()
			reqs := make([]models.Request, len(points))
			for i, p := range points {
				reqs[i] = models.Request{Slug: string(p.Point)}
			}
			return reqs, nil
		},
		Permalink: Pattern("/hooks/:slug/"),
		Data: func(_ context.Context, req models.Request, data models.Data) (models.Data, error) {
			for _, p := range hook.Points() {
				if string(p.Point) == req.Slug {
					return data.Merge(models.Data{
						"title":       string(p.Point),
						"hook":        string(p.Point),
						"description": p.Description,
						"context":     p.Context,
						"mutable":     p.Mutable,
					}), nil
				}
			}
			return data, nil
		},
		Template: mustTemplate("hooks.html"),
	}
}

// Blog renders content files. It has no requests of its own: the markdown
// plugin adds them through the allRequests hook.
func Blog() Route {
	return Route{
		Name: "blog",
		All: func(context.Context, models.Data) ([]models.Request, error) {
			return nil, nil
		},
		Permalink: Pattern("/:slug/"),
		Template:  mustTemplate("blog.html"),
	}
}

// Builtins returns every built-in route.
func Builtins() []Route {
	return []Route{Simple(), Hooks(), Blog()}
}
