package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/pontos/internal/apperr"
)

// SongRow is a row of the songs table.
type SongRow struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Lyrics    string    `json:"lyrics,omitempty"`
	Tags      []string  `json:"tags"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// TagCount is a tag with the number of songs carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Upsert inserts or replaces a song, its FTS entry and tags in one transaction.
func (db *DB) Upsert(s SongRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if s.Tags == nil {
		s.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(s.Tags)

	_, err = tx.Exec(`
		INSERT INTO songs (path, url, title, lyrics, tags, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			url        = excluded.url,
			title      = excluded.title,
			lyrics     = excluded.lyrics,
			tags       = excluded.tags,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, s.Path, s.URL, s.Title, s.Lyrics, string(tagsJSON), s.Checksum, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert song: %w", err)
	}

	if err := ftsUpsert(tx, s.Path, s.Title, s.Lyrics, s.Tags); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM song_tags WHERE path = ?`, s.Path); err != nil {
		return fmt.Errorf("catalog: clear tags: %w", err)
	}
	if len(s.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO song_tags (path, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range s.Tags {
			if _, err := stmt.Exec(s.Path, tag); err != nil {
				return fmt.Errorf("catalog: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Delete removes a song, its FTS entry and tags.
func (db *DB) Delete(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM song_tags WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM songs WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a song, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM songs WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: get checksum: %w", err)
	}
	return cs, nil
}

// Get returns a single song.
func (db *DB) Get(path string) (*SongRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, url, title, lyrics, tags, checksum, updated_at
		FROM songs WHERE path = ?`, path)
	s, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get: %w", err)
	}
	return s, nil
}

// List returns songs ordered by path, optionally filtered by tag, with the
// total number of matching songs.
func (db *DB) List(limit, offset int, tag string) ([]SongRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if tag != "" {
		where = `WHERE path IN (SELECT path FROM song_tags WHERE tag = ?)`
		args = append(args, tag)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM songs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, url, title, '', tags, checksum, updated_at
		FROM songs `+where+`
		ORDER BY path
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	out := []SongRow{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

// Tags returns every tag with its song count, most used first.
func (db *DB) Tags() ([]TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT tag, count(*) AS n FROM song_tags
		GROUP BY tag ORDER BY n DESC, tag`)
	if err != nil {
		return nil, fmt.Errorf("catalog: tags: %w", err)
	}
	defer rows.Close()

	out := []TagCount{}
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every catalogued song.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM songs`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(sc scanner) (*SongRow, error) {
	var s SongRow
	var tags string
	if err := sc.Scan(&s.Path, &s.URL, &s.Title, &s.Lyrics, &tags, &s.Checksum, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil || s.Tags == nil {
		s.Tags = []string{}
	}
	return &s, nil
}
