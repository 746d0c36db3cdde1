// Package search builds the flat JSON index consumed by the site's
// client-side search.
package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/pontos/internal/models"
	"github.com/starford/pontos/internal/parser"
	"github.com/starford/pontos/internal/storage"
)

// DefaultBaseURL prefixes every record URL.
const DefaultBaseURL = "https://umbandaponto.com/"

// Extensions are the document extensions picked up by the walk.
var Extensions = []string{".md", ".mdx"}

// Builder collects search records from a docs tree.
type Builder struct {
	store   storage.Provider
	baseURL string
	logger  *slog.Logger
}

// NewBuilder creates a Builder over store. An empty baseURL selects DefaultBaseURL.
func NewBuilder(store storage.Provider, baseURL string, logger *slog.Logger) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{store: store, baseURL: baseURL, logger: logger}
}

// Build walks the docs tree and returns one record per document that has
// both a title and a lyric block, in walk order. Documents missing either
// are skipped silently. A read or frontmatter error aborts the whole build.
func (b *Builder) Build() ([]models.SearchRecord, error) {
	metas, err := b.store.List("", Extensions...)
	if err != nil {
		return nil, fmt.Errorf("search: walk: %w", err)
	}

	results := []models.SearchRecord{}
	for _, m := range metas {
		data, err := b.store.Read(m.Path)
		if err != nil {
			return nil, err
		}
		rec, ok, err := Extract(data)
		if err != nil {
			return nil, fmt.Errorf("search: %s: %w", m.Path, err)
		}
		if !ok {
			b.logger.Debug("search: skipped", slog.String("path", m.Path))
			continue
		}
		rec.URL = DeriveURL(b.baseURL, m.Path)
		results = append(results, rec)
	}
	return results, nil
}

// Run builds the index and writes it to output. Nothing is written when the
// build fails, so a previous output file stays intact.
func (b *Builder) Run(output string) ([]models.SearchRecord, error) {
	records, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := Write(output, records); err != nil {
		return nil, err
	}
	b.logger.Info("search: index written",
		slog.String("output", output),
		slog.Int("records", len(records)))
	return records, nil
}

// Extract returns the search record for a document, without URL.
// The second return value is false when the title or lyrics are missing.
func Extract(data []byte) (models.SearchRecord, bool, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return models.SearchRecord{}, false, err
	}
	title, ok := parser.SearchTitle(res.Body)
	if !ok || title == "" {
		return models.SearchRecord{}, false, nil
	}
	lyrics, ok := parser.Lyrics(res.Body)
	if !ok || lyrics == "" {
		return models.SearchRecord{}, false, nil
	}
	return models.SearchRecord{
		Title:  title,
		Lyrics: lyrics,
		Tags:   res.Tags,
	}, true, nil
}

// DeriveURL maps a docs-relative path to its public URL. The first
// occurrence of the extension is removed and only the first backslash is
// turned into a forward slash.
func DeriveURL(baseURL, rel string) string {
	u := strings.Replace(rel, filepath.Ext(rel), "", 1)
	u = strings.Replace(u, `\`, "/", 1)
	return baseURL + u
}

// Marshal encodes records as a two-space indented JSON array without HTML escaping.
func Marshal(records []models.SearchRecord) ([]byte, error) {
	if records == nil {
		records = []models.SearchRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("search: encode: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write encodes records and writes them to path in a single call.
func Write(path string, records []models.SearchRecord) error {
	data, err := Marshal(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("search: write %s: %w", path, err)
	}
	return nil
}
