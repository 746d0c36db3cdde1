package lint

import "regexp"

var (
	parenthesizedRe = regexp.MustCompile(`\(([^)]+)\)`)
	repeatAnnotRe   = regexp.MustCompile(`^\d+x$`)
)

// Finding is an unexpected parenthesized annotation.
type Finding struct {
	File       string
	Annotation string
}

// Audit reports every parenthesized span whose text is not a repeat
// count like "2x". It never changes content.
func Audit(file, content string) []Finding {
	var out []Finding
	for _, m := range parenthesizedRe.FindAllStringSubmatch(content, -1) {
		if repeatAnnotRe.MatchString(m[1]) {
			continue
		}
		out = append(out, Finding{File: file, Annotation: "(" + m[1] + ")"})
	}
	return out
}
