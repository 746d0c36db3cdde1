package lint

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	titleLineRe       = regexp.MustCompile(`(?m)^\s*title:\s.*$`)
	descriptionLineRe = regexp.MustCompile(`(?m)^\s*description:\s.*$`)
)

// RewriteFrontmatter replaces the title and description of a raw
// frontmatter block (without delimiters) and returns the delimited block.
// The new keys are inserted right before "tags:". Without a "tags:" key
// the split falls at the last character of the block.
func RewriteFrontmatter(frontmatter, title, description string) string {
	fm := removeFirst(titleLineRe, frontmatter)
	fm = removeFirst(descriptionLineRe, fm)

	lines := strings.Split(fm, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	fm = strings.Join(kept, "\n")

	head, tail := splitAtTags(fm)
	joined := strings.Join([]string{
		strings.TrimSpace(head),
		`title: "` + title + `"`,
		`description: "` + description + `"`,
		strings.TrimSpace(tail),
	}, "\n")

	return "---\n" + strings.TrimSpace(joined) + "\n---"
}

func splitAtTags(fm string) (string, string) {
	if pos := strings.Index(fm, "tags:"); pos >= 0 {
		return fm[:pos], fm[pos:]
	}
	if fm == "" {
		return "", ""
	}
	_, size := utf8.DecodeLastRuneInString(fm)
	return fm[:len(fm)-size], fm[len(fm)-size:]
}

func removeFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
