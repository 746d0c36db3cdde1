package mcpserver

// DocumentFormat describes the layout of a generated ponto document so
// LLM consumers can read titles, lyrics and tags reliably.
const DocumentFormat = `# Ponto Document Format

Every ponto is a Markdown (` + "`" + `.mdx` + "`" + ` or ` + "`" + `.md` + "`" + `) file under the docs tree,
one directory per category.

## Structure

` + "```" + `markdown
---
hide_table_of_contents: true
tags:
  - Ogum                  # the category, one entry
title: "Ogum Megê"        # added by the linter
description: "Ogum yê ..." # added by the linter, lyrics on one line
---

# Ogum Megê

### Letra

` + "```" + `text
Ogum yê, meu pai
(2x)
` + "```" + `

### Youtube

<iframe src="https://www.youtube.com/embed/..." ...></iframe>
` + "```" + `

## Rules

1. **Path** is ` + "`" + `<category>/<slug>.mdx` + "`" + `. The slug is the lowercased title with
   accents stripped and whitespace turned into hyphens.
2. **Title** is the first level-one heading.
3. **Lyrics** are the fenced ` + "`" + `text` + "`" + ` block right after ` + "`" + `### Letra` + "`" + ` and a blank line.
4. **Repetition marks** are written as ` + "`" + `(2x)` + "`" + `, ` + "`" + `(3x)` + "`" + `. Any other parenthesised
   annotation is reported by the linter.
5. **Public URL** is the base URL plus the path without its extension.
6. Documents without a title or lyric block are not searchable.
`
