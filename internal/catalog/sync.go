package catalog

import (
	"log/slog"
	"time"

	"github.com/starford/pontos/internal/search"
	"github.com/starford/pontos/internal/storage"
)

// Sync walks the docs tree and brings the catalog up to date:
//   - new/changed documents are extracted and upserted
//   - documents the search extractor rejects are left out
//   - documents removed from disk are deleted from the catalog
func Sync(db *DB, store storage.Provider, baseURL string, logger *slog.Logger) error {
	metas, err := store.List("", search.Extensions...)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if checksums[m.Path] == m.Checksum {
			disk[m.Path] = struct{}{}
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("catalog: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		indexed, err := indexFile(db, baseURL, m.Path, data)
		if err != nil {
			logger.Warn("catalog: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if indexed {
			disk[m.Path] = struct{}{}
			logger.Debug("catalog: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.Delete(p); err != nil {
				logger.Warn("catalog: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("catalog: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

func orDefault(baseURL string) string {
	if baseURL == "" {
		return search.DefaultBaseURL
	}
	return baseURL
}

// indexFile extracts the search record from data and upserts it. It reports
// false, after removing any previous row, when the document has no title or
// lyric block.
func indexFile(db *DB, baseURL, path string, data []byte) (bool, error) {
	rec, ok, err := search.Extract(data)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, db.Delete(path)
	}
	row := SongRow{
		Path:      path,
		URL:       search.DeriveURL(orDefault(baseURL), path),
		Title:     rec.Title,
		Lyrics:    rec.Lyrics,
		Tags:      rec.Tags,
		Checksum:  storage.Checksum(data),
		UpdatedAt: time.Now().UTC(),
	}
	return true, db.Upsert(row)
}
