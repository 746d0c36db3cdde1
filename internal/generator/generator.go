// Package generator turns spreadsheet rows into markdown documents under
// a category directory of the docs tree.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pontos/internal/apperr"
	"github.com/starford/pontos/internal/models"
	"github.com/starford/pontos/internal/slug"
	"github.com/starford/pontos/internal/storage"
)

// DefaultExtension is the extension of generated documents.
const DefaultExtension = ".mdx"

// Result summarizes one generation run.
type Result struct {
	Written []string
	Failed  int
}

// Generator writes one document per source row.
type Generator struct {
	store  storage.Provider
	ext    string
	logger *slog.Logger
}

// New creates a Generator writing files with extension ext into store.
func New(store storage.Provider, ext string, logger *slog.Logger) *Generator {
	if ext == "" {
		ext = DefaultExtension
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{store: store, ext: ext, logger: logger}
}

// Path returns the docs-relative path of the document generated for row.
func (g *Generator) Path(row models.SourceRow) string {
	return filepath.Join(row.Category, slug.FromTitle(row.Title)+g.ext)
}

// Generate writes every row in order. A failing row is logged and skipped;
// the remaining rows are still processed. Existing files are overwritten,
// so two rows with the same slug in one category leave the later one.
func (g *Generator) Generate(ctx context.Context, rows []models.SourceRow) Result {
	var res Result
	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		path, err := g.Write(row)
		if err != nil {
			res.Failed++
			g.logger.Error("generate: unexpected error",
				slog.String("title", row.Title),
				slog.String("category", row.Category),
				slog.String("error", err.Error()))
			continue
		}
		res.Written = append(res.Written, path)
		g.logger.Info("generate: created", slog.String("path", path))
	}
	return res
}

// Write renders and persists the document for a single row.
func (g *Generator) Write(row models.SourceRow) (string, error) {
	if err := validateRow(row); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrInvalidRow, err)
	}
	content, err := Render(NewDocument(row))
	if err != nil {
		return "", fmt.Errorf("generate: render: %w", err)
	}
	if err := g.store.EnsureDir(row.Category); err != nil {
		return "", err
	}
	path := g.Path(row)
	if err := g.store.Write(path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

func validateRow(row models.SourceRow) error {
	return validation.ValidateStruct(&row,
		validation.Field(&row.Category, validation.Required),
		validation.Field(&row.Title, validation.Required),
	)
}
