// Package storage abstracts the output directory a site is built into.
package storage

import "time"

// FileInfo describes a file under the storage root.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for output file operations. All paths are
// relative to the provider root.
type Provider interface {
	// List returns every file under dir whose name ends with ext ("" for all).
	List(dir, ext string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Clean removes everything under the root, keeping the root itself.
	Clean() error
}
