package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/checksum"
	"github.com/starford/hookpress/internal/metrics"
	"github.com/starford/hookpress/internal/models"
	"github.com/starford/hookpress/internal/parser"
)

// RoutesDir is the directory, relative to the source root, holding one
// sub-directory of content per route.
const RoutesDir = "routes"

// Aggregate reads every content file matching cfg.Pattern directly under
// routes/<route>/ of fsys, for each configured route in order. Files within a
// route are taken in lexical order, so two runs over the same tree produce
// identical snapshots.
//
// Files that cannot be read, carry malformed front matter or repeat a slug
// already used in their route are handled according to cfg.OnInvalid.
func Aggregate(ctx context.Context, fsys fs.FS, cfg Config, logger *slog.Logger, rec metrics.Recorder) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("markdown: config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	rec = metrics.OrNoop(rec)

	var (
		docs  []models.Document
		diags []Diagnostic
	)

	for _, route := range cfg.Routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := path.Join(RoutesDir, route)
		files, err := fs.Glob(fsys, path.Join(dir, cfg.Pattern))
		if err != nil {
			return nil, fmt.Errorf("markdown: glob %s: %w", dir, err)
		}
		if len(files) == 0 {
			logger.Debug("markdown: no content files", slog.String("route", route), slog.String("dir", dir))
		}

		seen := make(map[string]string, len(files))
		count := 0
		for _, file := range files {
			if info, statErr := fs.Stat(fsys, file); statErr == nil && info.IsDir() {
				continue
			}
			doc, err := loadDocument(fsys, route, file)
			if err == nil {
				if prev, dup := seen[doc.Slug]; dup {
					err = fmt.Errorf("%w: %q also used by %s", apperr.ErrDuplicateSlug, doc.Slug, prev)
				}
			}
			if err != nil {
				rec.IncInvalidFile(route)
				if cfg.OnInvalid == PolicyFail {
					return nil, fmt.Errorf("markdown: %s: %w", file, err)
				}
				logger.Warn("markdown: skipping content file",
					slog.String("route", route),
					slog.String("path", file),
					slog.String("error", err.Error()))
				diags = append(diags, Diagnostic{Route: route, Path: file, Err: err})
				continue
			}
			seen[doc.Slug] = file
			docs = append(docs, doc)
			count++
		}

		rec.SetDocuments(route, count)
		logger.Debug("markdown: aggregated route", slog.String("route", route), slog.Int("documents", count))
	}

	return newSnapshot(docs, diags), nil
}

func loadDocument(fsys fs.FS, route, file string) (models.Document, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return models.Document{}, fmt.Errorf("read: %w", err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return models.Document{}, err
	}
	if v, ok := res.FrontMatter[models.FrontMatterSlug]; ok && v != nil {
		if _, isString := v.(string); !isString && res.FrontMatter.Slug() == "" {
			return models.Document{}, fmt.Errorf("%w: slug must be a scalar, got %T", apperr.ErrInvalidFrontMatter, v)
		}
	}
	return models.Document{
		Route:       route,
		Slug:        DeriveSlug(file, res.FrontMatter),
		Path:        file,
		Title:       res.Title,
		Body:        res.Body,
		FrontMatter: res.FrontMatter,
		Checksum:    checksum.Sum(data),
	}, nil
}
