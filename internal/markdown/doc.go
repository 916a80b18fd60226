// Package markdown aggregates front-matter annotated content files into an
// immutable Snapshot and exposes it to the hook pipeline.
//
// Aggregation runs once, before any other hook point fires:
//
//	snap, err := markdown.Aggregate(ctx, os.DirFS("src"), cfg, logger)
//
// The plugin then contributes three hooks over that snapshot:
//
//   - bootstrap: adds the document sequence to the shared data under "markdown"
//   - allRequests: appends one request per document
//   - data: renders the matching document and adds "frontmatter" and "html"
//
// Snapshots are never mutated, so data hooks may run concurrently.
package markdown
