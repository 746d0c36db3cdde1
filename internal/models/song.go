// Package models defines the domain types shared by the pipeline stages.
package models

import "time"

// SourceRow is one spreadsheet row describing a ponto.
type SourceRow struct {
	Category  string `json:"category"`
	Title     string `json:"title"`
	LyricBody string `json:"lyric_body"`
	VideoLink string `json:"video_link"`
}

// FrontMatter is the fixed metadata block of a generated document.
type FrontMatter struct {
	Title       string   `yaml:"title,omitempty"`
	Description string   `yaml:"description,omitempty"`
	HideTOC     bool     `yaml:"hide_table_of_contents"`
	Tags        []string `yaml:"tags"`
}

// Document is a generated markdown page. Its identity is Category/slug(Title).
type Document struct {
	FrontMatter   FrontMatter
	Category      string
	Title         string
	LyricBody     string
	VideoEmbedURL string
}

// SearchRecord is one entry of the flat search index.
// Field names are consumed by the client-side search and must stay stable.
type SearchRecord struct {
	URL    string   `json:"url"`
	Title  string   `json:"title"`
	Lyrics string   `json:"lyrics"`
	Tags   []string `json:"tags"`
}

// DocumentMeta is a lightweight representation returned by docs-tree listings.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
