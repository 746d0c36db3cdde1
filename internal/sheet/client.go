// Package sheet reads source rows from a published Google spreadsheet
// through the visualization (gviz) JSON endpoint.
package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/pontos/internal/apperr"
	"github.com/starford/pontos/internal/models"
)

// DefaultURLTemplate is the gviz endpoint; %s is replaced by the sheet id.
const DefaultURLTemplate = "https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:json"

const (
	responsePrefix = "google.visualization.Query.setResponse("
	responseSuffix = ");"
)

// Columns maps the spreadsheet column labels to row fields.
// Labels are compared after trimming surrounding whitespace.
type Columns struct {
	Category string `yaml:"category"`
	Title    string `yaml:"title"`
	Lyric    string `yaml:"lyric"`
	Video    string `yaml:"video"`
}

// DefaultColumns returns the labels used by the published sheet.
func DefaultColumns() Columns {
	return Columns{
		Category: "Categoria",
		Title:    "Título",
		Lyric:    "Letra",
		Video:    "Youtube (apenas um vídeo)",
	}
}

// Client fetches the sheet in a single request.
type Client struct {
	http        *http.Client
	urlTemplate string
	sheetID     string
	columns     Columns
}

// NewClient creates a Client. An empty urlTemplate selects DefaultURLTemplate.
func NewClient(sheetID, urlTemplate string, columns Columns, timeout time.Duration) *Client {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		urlTemplate: urlTemplate,
		sheetID:     sheetID,
		columns:     columns,
	}
}

// URL returns the endpoint the client reads from.
func (c *Client) URL() string {
	return fmt.Sprintf(c.urlTemplate, c.sheetID)
}

// Fetch downloads the sheet and returns one SourceRow per data row.
// There is no retry; any transport or decoding failure is returned.
func (c *Client) Fetch(ctx context.Context) ([]models.SourceRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("sheet: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet: fetch: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sheet: read body: %w", err)
	}
	tbl, err := decode(body)
	if err != nil {
		return nil, err
	}
	return tbl.sourceRows(c.columns), nil
}

type response struct {
	Status string `json:"status"`
	Table  table  `json:"table"`
}

type table struct {
	Cols []struct {
		Label string `json:"label"`
	} `json:"cols"`
	Rows []struct {
		C []*cell `json:"c"`
	} `json:"rows"`
}

// cell is a gviz cell; empty cells are encoded as null.
type cell struct {
	V any `json:"v"`
}

// decode strips the JavaScript wrapper around the gviz payload.
func decode(body []byte) (*table, error) {
	text := string(body)
	start := strings.Index(text, responsePrefix)
	if start < 0 {
		return nil, fmt.Errorf("%w: missing response wrapper", apperr.ErrMalformedResponse)
	}
	text = strings.TrimSpace(text[start+len(responsePrefix):])
	text = strings.TrimSuffix(text, responseSuffix)

	var r response
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrMalformedResponse, err)
	}
	if r.Status != "" && r.Status != "ok" {
		return nil, fmt.Errorf("%w: status %q", apperr.ErrMalformedResponse, r.Status)
	}
	return &r.Table, nil
}

// records returns each row as a label → value map.
func (t *table) records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Cols))
		for i, col := range t.Cols {
			rec[strings.TrimSpace(col.Label)] = cellString(row.C, i)
		}
		out = append(out, rec)
	}
	return out
}

func (t *table) sourceRows(cols Columns) []models.SourceRow {
	recs := t.records()
	rows := make([]models.SourceRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, models.SourceRow{
			Category:  rec[cols.Category],
			Title:     rec[cols.Title],
			LyricBody: rec[cols.Lyric],
			VideoLink: rec[cols.Video],
		})
	}
	return rows
}

func cellString(cells []*cell, i int) string {
	if i >= len(cells) || cells[i] == nil || cells[i].V == nil {
		return ""
	}
	if s, ok := cells[i].V.(string); ok {
		return s
	}
	return fmt.Sprint(cells[i].V)
}
