//go:build sqlite_fts5

package catalog

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM songs_fts`).Scan(&count); err != nil {
		t.Fatalf("songs_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := SongRow{
		Path:      "fts.mdx",
		Title:     "Ponto de Oxossi",
		Lyrics:    "Oxossi é caçador da mata sagrada",
		Checksum:  "f1",
		Tags:      []string{"Oxossi"},
		UpdatedAt: time.Now(),
	}
	if err := db.Upsert(row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	results, err := db.Search("cacador", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "fts.mdx" {
		t.Errorf("path = %q", results[0].Path)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(SongRow{Path: "gone.mdx", Lyrics: "cantiga sumida", Checksum: "g", Tags: []string{}, UpdatedAt: time.Now()})
	_ = db.Delete("gone.mdx")

	results, _ := db.Search("sumida", 10)
	for _, r := range results {
		if r.Path == "gone.mdx" {
			t.Error("deleted song still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.Upsert(SongRow{Path: "evo.mdx", Title: "Old", Lyrics: "primeira versao", Checksum: "1", Tags: []string{}, UpdatedAt: now})
	_ = db.Upsert(SongRow{Path: "evo.mdx", Title: "New", Lyrics: "segunda versao", Checksum: "2", Tags: []string{}, UpdatedAt: now})

	results, _ := db.Search("primeira", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("segunda", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
