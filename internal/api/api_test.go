package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/index"
	"github.com/starford/hookpress/internal/markdown"
	"github.com/starford/hookpress/internal/site"
	"github.com/starford/hookpress/internal/sse"
	"github.com/starford/hookpress/internal/testutil"
)

type testEnv struct {
	live   *site.Live
	dist   string
	router http.Handler
}

// newEnv builds a bootstrapped site, a synced index and the full router:
// /api plus the page handler.
func newEnv(t *testing.T, token string, events http.Handler) *testEnv {
	t.Helper()
	db := testutil.TestDB(t)
	live, dist := testutil.TestLive(t, testutil.Content(), db)

	r := chi.NewRouter()
	r.Mount("/api", NewRouter(Deps{
		Live:        live,
		Index:       db,
		Events:      events,
		AuthEnabled: token != "",
		Token:       token,
		Logger:      testutil.Logger(),
	}))
	r.Handle("/*", NewPageHandler(live, dist, testutil.Logger()))
	return &testEnv{live: live, dist: dist, router: r}
}

func (e *testEnv) get(t *testing.T, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestListRequests(t *testing.T) {
	env := newEnv(t, "", nil)

	w := env.get(t, "/api/requests?route=blog")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Requests []RequestItem `json:"requests"`
		Total    int           `json:"total"`
	}
	decode(t, w, &resp)
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	want := []RequestItem{
		{Route: "blog", Slug: "custom", Permalink: "/custom/"},
		{Route: "blog", Slug: "b-note", Permalink: "/b-note/"},
	}
	for i, item := range resp.Requests {
		if item != want[i] {
			t.Errorf("requests[%d] = %+v, want %+v", i, item, want[i])
		}
	}

	w = env.get(t, "/api/requests")
	decode(t, w, &resp)
	if resp.Total != 1+len(hook.Points())+2 {
		t.Errorf("unfiltered total = %d", resp.Total)
	}
}

func TestGetData(t *testing.T) {
	env := newEnv(t, "", nil)

	w := env.get(t, "/api/data/blog/custom")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Permalink string         `json:"permalink"`
		Data      map[string]any `json:"data"`
	}
	decode(t, w, &resp)
	if resp.Permalink != "/custom/" {
		t.Errorf("permalink = %q", resp.Permalink)
	}
	if html, _ := resp.Data["html"].(string); !strings.Contains(html, "<h1>Hi</h1>") {
		t.Errorf("html = %q", resp.Data["html"])
	}
	fm, _ := resp.Data["frontmatter"].(map[string]any)
	if fm["title"] != "Custom" {
		t.Errorf("frontmatter = %v", resp.Data["frontmatter"])
	}
	if _, ok := resp.Data["markdown"]; ok {
		t.Error("document list should not be returned")
	}
}

func TestGetData_NotFound(t *testing.T) {
	env := newEnv(t, "", nil)

	for _, target := range []string{"/api/data/blog/nope", "/api/data/nope/custom"} {
		if w := env.get(t, target); w.Code != http.StatusNotFound {
			t.Errorf("%s = %d, want 404", target, w.Code)
		}
	}
}

func TestNotReady(t *testing.T) {
	s, _ := testutil.TestSite(t, testutil.Content())
	router := NewRouter(Deps{Live: site.NewLive(s), Logger: testutil.Logger()})

	for _, target := range []string{"/requests", "/data/blog/x", "/hooks"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d, want 503", target, w.Code)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	env := newEnv(t, "", nil)

	w := env.get(t, "/api/search?q=gophers")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Results []index.SearchResult `json:"results"`
	}
	decode(t, w, &resp)
	if len(resp.Results) != 1 || resp.Results[0].Slug != "b-note" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	env := newEnv(t, "", nil)

	if w := env.get(t, "/api/search"); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestListHooks(t *testing.T) {
	env := newEnv(t, "", nil)

	w := env.get(t, "/api/hooks")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Points []struct {
			Hook  string     `json:"hook"`
			Hooks []HookItem `json:"hooks"`
		} `json:"points"`
	}
	decode(t, w, &resp)
	if len(resp.Points) != len(hook.Points()) {
		t.Fatalf("points = %d", len(resp.Points))
	}
	data := resp.Points[2]
	if data.Hook != "data" || len(data.Hooks) != 1 || data.Hooks[0].Name != markdown.HookData {
		t.Errorf("data point = %+v", data)
	}
}

func TestPageHandler(t *testing.T) {
	env := newEnv(t, "", nil)

	w := env.get(t, "/custom/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<h1>Hi</h1>") {
		t.Errorf("body = %s", w.Body.String())
	}

	// Missing trailing slash still resolves.
	if w := env.get(t, "/b-note"); w.Code != http.StatusOK {
		t.Errorf("/b-note = %d", w.Code)
	}
}

func TestPageHandler_StaticFallback(t *testing.T) {
	env := newEnv(t, "", nil)
	if err := os.MkdirAll(filepath.Join(env.dist, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.dist, "assets", "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := env.get(t, "/assets/app.css")
	if w.Code != http.StatusOK || w.Body.String() != "body{}" {
		t.Errorf("static = %d %q", w.Code, w.Body.String())
	}
	if w := env.get(t, "/nope/"); w.Code != http.StatusNotFound {
		t.Errorf("missing page = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	env := newEnv(t, "secret123", nil)

	if w := env.get(t, "/api/requests", "Authorization", "Bearer secret123"); w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	env := newEnv(t, "secret123", nil)

	w := env.get(t, "/api/requests")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	env := newEnv(t, "secret123", nil)

	if w := env.get(t, "/api/requests", "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_PagesStayPublic(t *testing.T) {
	env := newEnv(t, "secret123", nil)

	if w := env.get(t, "/custom/"); w.Code != http.StatusOK {
		t.Errorf("page with auth enabled = %d, want 200", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	b := sse.NewBroker(100 * time.Millisecond)
	defer b.Close()
	env := newEnv(t, "secret", b)

	if w := env.get(t, "/api/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_Reload(t *testing.T) {
	b := sse.NewBroker(100 * time.Millisecond)
	defer b.Close()
	env := newEnv(t, "", b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		env.router.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	b.Reload("test")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(w.Body.String(), "event: reload") {
		t.Errorf("handler output missing reload: %q", w.Body.String())
	}
}
