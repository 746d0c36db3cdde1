package sheet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/pontos/internal/apperr"
)

const gvizBody = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","reqId":"0","status":"ok","table":{"cols":[{"id":"A","label":" Categoria ","type":"string"},{"id":"B","label":"Título","type":"string"},{"id":"C","label":"Letra","type":"string"},{"id":"D","label":"Youtube (apenas um vídeo)","type":"string"}],"rows":[{"c":[{"v":"Oxossi"},{"v":"Exaltação a Oxóssi"},{"v":"Okê Arô"},{"v":"https://www.youtube.com/watch?v=abc"}]},{"c":[{"v":"Ogum"},{"v":7},null,{"v":null}]}]}});`

func testServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/d/sheet-123/") {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := testServer(t, http.StatusOK, gvizBody)
	c := NewClient("sheet-123", srv.URL+"/d/%s/gviz/tq?tqx=out:json", DefaultColumns(), time.Second)

	rows, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	r := rows[0]
	if r.Category != "Oxossi" || r.Title != "Exaltação a Oxóssi" || r.LyricBody != "Okê Arô" {
		t.Errorf("row = %+v", r)
	}
	if r.VideoLink != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("video = %q", r.VideoLink)
	}
	if rows[1].Title != "7" || rows[1].LyricBody != "" || rows[1].VideoLink != "" {
		t.Errorf("row with nulls = %+v", rows[1])
	}
}

func TestFetch_Malformed(t *testing.T) {
	srv := testServer(t, http.StatusOK, `{"table":{}}`)
	c := NewClient("sheet-123", srv.URL+"/d/%s/gviz", DefaultColumns(), time.Second)
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, apperr.ErrMalformedResponse) {
		t.Errorf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestFetch_HTTPError(t *testing.T) {
	srv := testServer(t, http.StatusInternalServerError, "boom")
	c := NewClient("sheet-123", srv.URL+"/d/%s/gviz", DefaultColumns(), time.Second)
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Error("expected error on 500")
	}
}

func TestURL_Default(t *testing.T) {
	c := NewClient("abc", "", DefaultColumns(), 0)
	want := "https://docs.google.com/spreadsheets/d/abc/gviz/tq?tqx=out:json"
	if c.URL() != want {
		t.Errorf("URL = %q, want %q", c.URL(), want)
	}
}
