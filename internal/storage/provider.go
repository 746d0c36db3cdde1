// Package storage defines the docs-tree file-system abstraction.
package storage

import "github.com/starford/pontos/internal/models"

// Provider is the interface for docs-tree file operations.
// All paths are relative to the docs root and use the host separator.
type Provider interface {
	// Root returns the absolute docs root.
	Root() string
	// List returns metadata for every file under dir whose extension is one of exts.
	// Entries are returned in lexical walk order.
	List(dir string, exts ...string) ([]models.DocumentMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, replacing any existing file.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// EnsureDir creates dir if it is absent. Parents are not created.
	EnsureDir(dir string) error
}
