// Package parser splits generated documents into frontmatter and body and
// extracts the title, lyric and description sources from the body.
//
// Extractors return an explicit found flag instead of an empty string so
// callers can tell a missing element from an empty one.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
)

const delim = "---"

var (
	searchTitleRe = regexp.MustCompile(`#\s(.+)\n`)
	letraRe       = regexp.MustCompile("(?s)### Letra\n\n```text\n(.*?)```")
	headingRe     = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	textBlockRe   = regexp.MustCompile("(?s)```text(.*?)```")
)

// Result holds the output of parsing a document with a structured frontmatter decoder.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Tags        []string
}

// Parse decodes the frontmatter of data and returns it with the remaining body.
// A document without frontmatter yields an empty map and the full content as body.
// Malformed frontmatter is an error.
func Parse(data []byte) (*Result, error) {
	fm := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, fmt.Errorf("parser: frontmatter: %w", err)
	}
	return &Result{
		Frontmatter: fm,
		Body:        string(body),
		Tags:        tagsOf(fm),
	}, nil
}

// tagsOf returns the frontmatter "tags" field as a string list.
// A scalar tag becomes a single-element list; absence yields an empty list.
func tagsOf(fm map[string]any) []string {
	out := []string{}
	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
	case []string:
		out = append(out, v...)
	case string:
		out = append(out, v)
	}
	return out
}

// Block is a raw frontmatter block cut out of a document without decoding it.
type Block struct {
	// Frontmatter is the text between the delimiters, trimmed.
	Frontmatter string
	// Body is everything after the closing delimiter, trimmed.
	Body string
}

// SplitRaw cuts the leading frontmatter block out of content. The block
// starts with "---" at offset zero and ends at the next "---", wherever it
// occurs. The second return value is false when content has no such block.
func SplitRaw(content string) (Block, bool) {
	if !strings.HasPrefix(content, delim) {
		return Block{}, false
	}
	end := strings.Index(content[len(delim):], delim)
	if end < 0 {
		return Block{}, false
	}
	end += len(delim)
	return Block{
		Frontmatter: strings.TrimSpace(content[len(delim):end]),
		Body:        strings.TrimSpace(content[end+len(delim):]),
	}, true
}

// SearchTitle returns the text after the first "#" followed by whitespace,
// up to the end of that line.
func SearchTitle(body string) (string, bool) {
	m := searchTitleRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Lyrics returns the trimmed contents of the first text fence that directly
// follows a "### Letra" heading and a blank line.
func Lyrics(body string) (string, bool) {
	m := letraRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Heading returns the first line-anchored top-level heading, trimmed.
func Heading(content string) (string, bool) {
	m := headingRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// TextBlock returns the raw contents of the first text fence in content,
// including the newline after the opening fence.
func TextBlock(content string) (string, bool) {
	m := textBlockRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}
