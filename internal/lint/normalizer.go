// Package lint normalizes generated documents in place: it rewrites words
// from a dictionary, refreshes the title and description frontmatter,
// renames files after their title and audits parenthesized annotations.
package lint

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/pontos/internal/parser"
	"github.com/starford/pontos/internal/slug"
	"github.com/starford/pontos/internal/storage"
)

// Rename records a file moved to its normalized name.
type Rename struct {
	From string
	To   string
}

// Result summarizes a normalizer run.
type Result struct {
	Files    int
	Renamed  []Rename
	Findings []Finding
}

// Normalizer rewrites every document with the configured extension.
type Normalizer struct {
	store        storage.Provider
	replacements *Replacements
	ext          string
	logger       *slog.Logger
}

// NewNormalizer creates a Normalizer over store.
func NewNormalizer(store storage.Provider, replacements *Replacements, ext string, logger *slog.Logger) *Normalizer {
	if ext == "" {
		ext = ".mdx"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{store: store, replacements: replacements, ext: ext, logger: logger}
}

// Normalize returns the rewritten content of a document. Content without
// a leading frontmatter block is returned unchanged.
func (n *Normalizer) Normalize(content string) string {
	block, ok := parser.SplitRaw(content)
	if !ok {
		return content
	}
	body := n.replacements.Apply(block.Body)
	fm := RewriteFrontmatter(block.Frontmatter, Title(body), Description(body))
	return fm + "\n\n" + body
}

// Run processes the file list captured at start, one file at a time. The
// first error stops the run; files handled before it stay rewritten.
func (n *Normalizer) Run() (*Result, error) {
	metas, err := n.store.List("", n.ext)
	if err != nil {
		return nil, fmt.Errorf("lint: list: %w", err)
	}
	res := &Result{}
	for _, m := range metas {
		if err := n.processFile(m.Path, res); err != nil {
			return res, err
		}
		res.Files++
	}
	n.logger.Info("lint: done",
		slog.Int("files", res.Files),
		slog.Int("renamed", len(res.Renamed)),
		slog.Int("warnings", len(res.Findings)))
	return res, nil
}

func (n *Normalizer) processFile(path string, res *Result) error {
	data, err := n.store.Read(path)
	if err != nil {
		return err
	}
	content := n.Normalize(string(data))

	newPath := filepath.Join(filepath.Dir(path), slug.Filename(Title(content))+n.ext)
	if err := n.store.Write(newPath, []byte(content)); err != nil {
		return err
	}
	if newPath != path {
		if err := n.store.Delete(path); err != nil {
			return err
		}
		res.Renamed = append(res.Renamed, Rename{From: path, To: newPath})
		n.logger.Debug("lint: renamed", slog.String("from", path), slog.String("to", newPath))
	}

	for _, f := range Audit(newPath, content) {
		n.logger.Warn("lint: unexpected parentheses",
			slog.String("file", f.File),
			slog.String("annotation", f.Annotation))
		res.Findings = append(res.Findings, f)
	}
	return nil
}
