package lint

import (
	"regexp"
	"strings"

	"github.com/starford/pontos/internal/parser"
	"github.com/starford/pontos/internal/slug"
)

// UntitledTitle is used when a document has no top-level heading.
const UntitledTitle = "Untitled"

var (
	repeatCountRe = regexp.MustCompile(`\(\d+x\)`)
	lineBreaksRe  = regexp.MustCompile(`[\r\n]+`)
	spaceRunRe    = regexp.MustCompile(`[` + slug.Space + `]{2,}`)
)

// Title returns the first top-level heading of content.
func Title(content string) string {
	if t, ok := parser.Heading(content); ok {
		return t
	}
	return UntitledTitle
}

// Description flattens the first text fence of content into one line:
// repeat counts such as "(3x)" and double quotes are dropped and
// whitespace is collapsed. Diacritics are kept.
func Description(content string) string {
	block, ok := parser.TextBlock(content)
	if !ok {
		return ""
	}
	s := repeatCountRe.ReplaceAllString(block, "")
	s = lineBreaksRe.ReplaceAllString(s, " ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, `"`, "")
	return slug.TrimSpace(s)
}
