package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hookpress/internal/index"
	"github.com/starford/hookpress/internal/site"
)

// Deps are the collaborators of the API router.
type Deps struct {
	Live *site.Live
	// Index backs /search; nil disables search.
	Index index.DocumentIndex
	// Events, if non-nil, is mounted at GET /events.
	Events      http.Handler
	AuthEnabled bool
	Token       string
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all API routes mounted. It is meant
// to be mounted under /api.
func NewRouter(d Deps) chi.Router {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := NewHandler(d.Live, d.Index, d.Logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(d.AuthEnabled, d.Token))

	r.Get("/requests", h.ListRequests)
	r.Get("/data/{route}/{slug}", h.GetData)
	r.Get("/search", h.Search)
	r.Get("/hooks", h.ListHooks)

	if d.Events != nil {
		r.Get("/events", d.Events.ServeHTTP)
	}

	return r
}
