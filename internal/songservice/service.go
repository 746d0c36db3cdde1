// Package songservice is the read side shared by the preview API and the
// MCP server.
package songservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/pontos/internal/apperr"
	"github.com/starford/pontos/internal/catalog"
	"github.com/starford/pontos/internal/parser"
	"github.com/starford/pontos/internal/storage"
)

// SongDetail is the full representation of a generated document.
type SongDetail struct {
	catalog.SongRow
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Content     string         `json:"content"`
	HTML        string         `json:"html"`
}

// Service coordinates storage and catalog reads.
type Service struct {
	store storage.Provider
	db    catalog.Catalog
	md    goldmark.Markdown
}

// NewService creates a new song service.
func NewService(store storage.Provider, db catalog.Catalog) *Service {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// Documents embed the video iframe as raw HTML.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Service{store: store, db: db, md: md}
}

// GetSong returns a catalogued document with its body rendered to HTML.
func (s *Service) GetSong(_ context.Context, path string) (*SongDetail, error) {
	row, err := s.db.Get(path)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(res.Body), &buf); err != nil {
		return nil, fmt.Errorf("songservice: render %s: %w", path, err)
	}
	return &SongDetail{
		SongRow:     *row,
		Frontmatter: res.Frontmatter,
		Content:     string(data),
		HTML:        buf.String(),
	}, nil
}

// ListSongs returns paginated songs with optional tag filter.
func (s *Service) ListSongs(_ context.Context, limit, offset int, tag string) ([]catalog.SongRow, int, error) {
	return s.db.List(limit, offset, tag)
}

// Search delegates full-text search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Tags returns every tag with its song count.
func (s *Service) Tags(_ context.Context) ([]catalog.TagCount, error) {
	return s.db.Tags()
}
