package lint

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Replacement is one dictionary entry with its compiled matcher.
type Replacement struct {
	Before string
	After  string
	re     *regexp.Regexp
}

// Replacements is the substitution dictionary in file order.
type Replacements struct {
	entries []Replacement
}

// LoadReplacements reads a JSON object mapping terms to their replacements.
func LoadReplacements(path string) (*Replacements, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lint: read replacements: %w", err)
	}
	return ParseReplacements(data)
}

// ParseReplacements decodes a JSON object, keeping key order.
func ParseReplacements(data []byte) (*Replacements, error) {
	om := orderedmap.New[string, string]()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, fmt.Errorf("lint: parse replacements: %w", err)
	}
	r := &Replacements{entries: make([]Replacement, 0, om.Len())}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		r.entries = append(r.entries, newReplacement(pair.Key, pair.Value))
	}
	return r, nil
}

// NewReplacements builds a dictionary from ordered before/after pairs.
func NewReplacements(pairs ...[2]string) *Replacements {
	r := &Replacements{entries: make([]Replacement, 0, len(pairs))}
	for _, p := range pairs {
		r.entries = append(r.entries, newReplacement(p[0], p[1]))
	}
	return r
}

func newReplacement(before, after string) Replacement {
	return Replacement{
		Before: before,
		After:  after,
		re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(before) + `\b`),
	}
}

// Len returns the number of entries.
func (r *Replacements) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Apply replaces every whole-word, case-insensitive occurrence of each term.
// Entries run in order, so later entries see the output of earlier ones.
func (r *Replacements) Apply(content string) string {
	if r == nil {
		return content
	}
	for _, e := range r.entries {
		content = e.re.ReplaceAllLiteralString(content, e.After)
	}
	return content
}
