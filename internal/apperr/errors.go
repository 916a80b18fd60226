// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidFrontMatter = errors.New("invalid front matter")
	ErrDuplicateSlug      = errors.New("duplicate slug")
	ErrDuplicatePermalink = errors.New("duplicate permalink")
	ErrRender             = errors.New("render failed")
	ErrNotReady           = errors.New("not ready")
)
