package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/models"
	"github.com/starford/hookpress/internal/shortcode"
)

// Page is one rendered request.
type Page struct {
	Request   models.Request
	Permalink string
	Data      models.Data
	HTML      string
}

// view is what route templates receive.
type view struct {
	Data      models.Data
	Request   models.Request
	Permalink string
	Origin    string
}

type layoutView struct {
	Title     string
	Canonical string
	Body      template.HTML
	CSS       []template.CSS
	JS        []template.JS
	Head      []template.HTML
	ReloadURL string
}

// PageData runs the route's data function and the data hooks for req and
// returns the resulting data without rendering.
func (s *Site) PageData(ctx context.Context, st *State, req models.Request) (models.Data, error) {
	rt, ok := s.routes[req.Route]
	if !ok {
		return nil, fmt.Errorf("%w: route %q", apperr.ErrNotFound, req.Route)
	}
	if _, ok := st.Permalink(req); !ok {
		return nil, fmt.Errorf("%w: request %s", apperr.ErrNotFound, req.Key())
	}
	data, err := rt.PageData(ctx, req, st.Data())
	if err != nil {
		return nil, err
	}
	return st.registry.RunData(ctx, req, st.requests, data)
}

// Page renders req: data hooks, route template, shortcodes, layout and
// finally the html hooks.
func (s *Site) Page(ctx context.Context, st *State, req models.Request) (page *Page, err error) {
	start := time.Now()
	defer func() { s.rec.ObservePage(req.Route, time.Since(start), err == nil) }()

	data, err := s.PageData(ctx, st, req)
	if err != nil {
		return nil, err
	}
	link, _ := st.Permalink(req)

	var body bytes.Buffer
	if err := s.templates[req.Route].Execute(&body, view{
		Data:      data,
		Request:   req,
		Permalink: link,
		Origin:    s.settings.Origin,
	}); err != nil {
		return nil, fmt.Errorf("%w: %s: template: %v", apperr.ErrRender, req.Key(), err)
	}

	out, err := st.processor.Process(ctx, body.String(), shortcode.Args{
		Request:     req,
		AllRequests: st.requests,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrRender, req.Key(), err)
	}

	lv := layoutView{
		Title:     pageTitle(req, data),
		Body:      template.HTML(out.HTML),
		ReloadURL: s.reloadURL,
	}
	if s.settings.Origin != "" {
		lv.Canonical = s.settings.Origin + link
	}
	for _, c := range dedupe(out.CSS) {
		lv.CSS = append(lv.CSS, template.CSS(c))
	}
	for _, j := range dedupe(out.JS) {
		lv.JS = append(lv.JS, template.JS(j))
	}
	for _, h := range dedupe(out.Head) {
		lv.Head = append(lv.Head, template.HTML(h))
	}

	var doc bytes.Buffer
	if err := s.layout.Execute(&doc, lv); err != nil {
		return nil, fmt.Errorf("%w: %s: layout: %v", apperr.ErrRender, req.Key(), err)
	}

	html, err := st.registry.RunHTML(ctx, req, data, doc.String())
	if err != nil {
		return nil, err
	}
	return &Page{Request: req, Permalink: link, Data: data, HTML: html}, nil
}

func pageTitle(req models.Request, data models.Data) string {
	if t, ok := data["title"].(string); ok && t != "" {
		return t
	}
	if fm, ok := data[models.DataFrontMatter].(models.FrontMatter); ok {
		if t := fm.Title(); t != "" {
			return t
		}
	}
	if docs, ok := data.Documents(); ok {
		for _, d := range docs {
			if d.Route == req.Route && d.Slug == req.Slug && d.Title != "" {
				return d.Title
			}
		}
	}
	return req.Slug
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
