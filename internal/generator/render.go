package generator

import (
	"strings"
	"text/template"

	"github.com/starford/pontos/internal/models"
)

const (
	watchMarker = "/watch?v="
	embedMarker = "/embed/"
)

var documentTmpl = template.Must(template.New("document").Parse(`---
hide_table_of_contents: true
tags:
{{- range .FrontMatter.Tags }}
  - {{ . }}
{{- end }}
---

# {{ .Title }}

### Letra

` + "```text" + `
{{ .LyricBody }}
` + "```" + `

### Youtube

<iframe
  width="200"
  height="200"
  src="{{ .VideoEmbedURL }}"
  title="YouTube video player"
  frameborder="0"
  allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"
  referrerpolicy="strict-origin-when-cross-origin"
  allowfullscreen
></iframe>
`))

// EmbedURL rewrites the first "/watch?v=" in link to "/embed/".
// Links without the marker are returned unchanged.
func EmbedURL(link string) string {
	return strings.Replace(link, watchMarker, embedMarker, 1)
}

// NewDocument builds the document for a source row.
func NewDocument(row models.SourceRow) models.Document {
	return models.Document{
		FrontMatter: models.FrontMatter{
			HideTOC: true,
			Tags:    []string{row.Category},
		},
		Category:      row.Category,
		Title:         row.Title,
		LyricBody:     row.LyricBody,
		VideoEmbedURL: EmbedURL(row.VideoLink),
	}
}

// Render returns the markdown text of doc.
func Render(doc models.Document) (string, error) {
	var sb strings.Builder
	if err := documentTmpl.Execute(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}
