package api

import (
	"log/slog"
	"net/http"
	"path"

	"github.com/starford/hookpress/internal/route"
	"github.com/starford/hookpress/internal/site"
)

// NewPageHandler serves rendered pages by permalink from the current state
// and falls back to files in distDir.
func NewPageHandler(live *site.Live, distDir string, logger *slog.Logger) http.Handler {
	static := http.FileServer(http.Dir(distDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			static.ServeHTTP(w, r)
			return
		}
		if path.Ext(r.URL.Path) == "" {
			if req, ok := live.Resolve(route.Normalize(r.URL.Path)); ok {
				page, err := live.Page(r.Context(), req)
				if err != nil {
					logger.Error("render page failed",
						slog.String("route", req.Route),
						slog.String("slug", req.Slug),
						slog.String("error", err.Error()))
					http.Error(w, "render failed", http.StatusInternalServerError)
					return
				}
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-cache")
				w.WriteHeader(http.StatusOK)
				if r.Method == http.MethodGet {
					_, _ = w.Write([]byte(page.HTML))
				}
				return
			}
		}
		static.ServeHTTP(w, r)
	})
}
