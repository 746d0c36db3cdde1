package lint

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report renders a human-readable summary of a run.
func Report(res *Result) string {
	if res == nil {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("lint: " + strconv.Itoa(res.Files) + " files")
	tw.AppendHeader(table.Row{"Kind", "File", "Detail"})
	for _, r := range res.Renamed {
		tw.AppendRow(table.Row{"renamed", r.From, r.To})
	}
	for _, f := range res.Findings {
		tw.AppendRow(table.Row{"warning", f.File, f.Annotation})
	}
	if len(res.Renamed) == 0 && len(res.Findings) == 0 {
		tw.AppendRow(table.Row{"ok", "-", "nothing to report"})
	}
	return tw.Render()
}
