// Package apperr holds sentinel errors shared across the pipeline.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoFrontmatter     = errors.New("no frontmatter")
	ErrMalformedResponse = errors.New("malformed spreadsheet response")
	ErrInvalidRow        = errors.New("invalid source row")
)
