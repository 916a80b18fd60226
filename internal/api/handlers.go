package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/index"
	"github.com/starford/hookpress/internal/models"
	"github.com/starford/hookpress/internal/site"
)

// Handler holds API route handlers.
type Handler struct {
	live   *site.Live
	index  index.DocumentIndex
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(live *site.Live, idx index.DocumentIndex, logger *slog.Logger) *Handler {
	return &Handler{live: live, index: idx, logger: logger}
}

// RequestItem is one entry of GET /api/requests.
type RequestItem struct {
	Route     string `json:"route"`
	Slug      string `json:"slug"`
	Permalink string `json:"permalink"`
}

// ListRequests handles GET /api/requests. ?route= filters by route.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	st := h.live.State()
	if st == nil {
		writeError(w, h.logger, "list requests", apperr.ErrNotReady)
		return
	}
	filter := r.URL.Query().Get("route")

	items := []RequestItem{}
	for _, req := range st.Requests() {
		if filter != "" && req.Route != filter {
			continue
		}
		link, _ := st.Permalink(req)
		items = append(items, RequestItem{Route: req.Route, Slug: req.Slug, Permalink: link})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requests": items,
		"total":    len(items),
	})
}

// GetData handles GET /api/data/{route}/{slug}: the data the page would be
// rendered with. The shared document list is left out.
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	req := models.Request{Route: chi.URLParam(r, "route"), Slug: chi.URLParam(r, "slug")}
	data, err := h.live.PageData(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "page data", err)
		return
	}
	out := data.Clone()
	delete(out, models.DataMarkdown)

	link := ""
	if st := h.live.State(); st != nil {
		link, _ = st.Permalink(req)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"request":   req,
		"permalink": link,
		"data":      out,
	})
}

// Search handles GET /api/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	if h.index == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index is disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.index.Search(q, limit)
	if err != nil {
		writeError(w, h.logger, "search", err)
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// HookItem describes one registered hook.
type HookItem struct {
	Point       string `json:"hook"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// ListHooks handles GET /api/hooks: every extension point and the hooks
// registered on it, in execution order.
func (h *Handler) ListHooks(w http.ResponseWriter, _ *http.Request) {
	st := h.live.State()
	if st == nil {
		writeError(w, h.logger, "list hooks", apperr.ErrNotReady)
		return
	}
	type point struct {
		hook.PointInfo
		Hooks []HookItem `json:"hooks"`
	}
	out := []point{}
	for _, info := range hook.Points() {
		p := point{PointInfo: info, Hooks: []HookItem{}}
		for _, hk := range st.Hooks(info.Point) {
			p.Hooks = append(p.Hooks, HookItem{
				Point:       string(hk.Point),
				Name:        hk.Name,
				Description: hk.Description,
				Priority:    hk.Priority,
			})
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": out})
}
