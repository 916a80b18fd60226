package index

import (
	"log/slog"

	"github.com/starford/hookpress/internal/models"
)

// SyncStats reports what a Sync changed.
type SyncStats struct {
	Upserted  int
	Removed   int
	Unchanged int
}

// Sync brings the index up to date with docs:
//   - new or changed documents (by checksum) are upserted
//   - indexed documents missing from docs are removed
//
// A document that fails to index is logged and skipped.
func Sync(db DocumentIndex, docs []models.Document, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats
	checksums, err := db.Checksums()
	if err != nil {
		return stats, err
	}

	current := make(map[Key]struct{}, len(docs))
	for _, doc := range docs {
		row := RowFromDocument(doc)
		current[row.Key()] = struct{}{}

		if cs, ok := checksums[row.Key()]; ok && cs == doc.Checksum {
			stats.Unchanged++
			continue
		}
		if err := db.Upsert(row); err != nil {
			logger.Warn("sync: index failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", doc.Path))
		stats.Upserted++
	}

	// Remove stale entries.
	for k := range checksums {
		if _, ok := current[k]; ok {
			continue
		}
		if err := db.Delete(k); err != nil {
			logger.Warn("sync: delete failed",
				slog.String("route", k.Route), slog.String("slug", k.Slug), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("route", k.Route), slog.String("slug", k.Slug))
		stats.Removed++
	}
	return stats, nil
}
