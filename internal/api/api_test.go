package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/pontos/internal/catalog"
	"github.com/starford/pontos/internal/songservice"
	"github.com/starford/pontos/internal/testutil"
)

// testEnv sets up a temp docs tree, SQLite catalog, service, and router.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) http.Handler {
	t.Helper()
	root, store := testutil.TestDocs(t)
	db := testutil.TestDB(t)

	testutil.WriteFile(t, root, filepath.Join("ogum", "ogum-mege.mdx"), testutil.Song("Ogum", "Ogum Megê", "Ogum yê, patacori"))
	testutil.WriteFile(t, root, filepath.Join("oxum", "mamae-oxum.mdx"), testutil.Song("Oxum", "Mamãe Oxum", "Ora yê yê ô"))
	if err := catalog.Sync(db, store, "https://example.com/", slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	return NewRouter(songservice.NewService(store, db), authEnabled, token, sseHandler)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetSong(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/songs/ogum/ogum-mege.mdx")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	var song SongDetail
	_ = json.Unmarshal(w.Body.Bytes(), &song)
	if song.Title != "Ogum Megê" {
		t.Errorf("title = %q, want Ogum Megê", song.Title)
	}
	if !strings.Contains(song.HTML, "patacori") {
		t.Errorf("html = %q", song.HTML)
	}
}

func TestGetSong_EncodedSlash(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/songs/oxum%2Fmamae-oxum.mdx")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetSong_NotFound(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/songs/nope.mdx")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	var body apiError
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error != "song not found" {
		t.Errorf("error = %q, want song not found", body.Error)
	}
}

func TestListSongs(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/songs")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp SongListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Songs) != 2 {
		t.Errorf("total = %d, songs = %d", resp.Total, len(resp.Songs))
	}

	w = get(t, router, "/songs?tag=Oxum")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Songs[0].Title != "Mamãe Oxum" {
		t.Errorf("tag filter = %+v", resp)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?q=patacori")
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].URL != "https://example.com/ogum/ogum-mege" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestTagsEndpoint(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/tags")
	if w.Code != http.StatusOK {
		t.Fatalf("tags status = %d", w.Code)
	}
	var resp TagsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Tags) != 2 {
		t.Errorf("tags = %+v", resp.Tags)
	}
}

func TestRequireToken_ValidToken(t *testing.T) {
	router := testEnv(t, "secret")
	for _, header := range []string{"Bearer secret", "bearer secret"} {
		req := httptest.NewRequest(http.MethodGet, "/songs", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%q = %d, want 200", header, w.Code)
		}
	}
}

func TestRequireToken_Rejects(t *testing.T) {
	router := testEnv(t, "secret")
	for name, header := range map[string]string{
		"missing":      "",
		"wrong token":  "Bearer wrong",
		"prefix token": "Bearer secre",
		"basic scheme": "Basic secret",
		"empty bearer": "Bearer ",
	} {
		req := httptest.NewRequest(http.MethodGet, "/tags", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != `Bearer realm="pontos"` {
			t.Errorf("%s: WWW-Authenticate = %q", name, got)
		}
	}
}

func TestRequireToken_QueryTokenOnlyForEvents(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", blockingSSE)

	w := get(t, router, "/songs?access_token=secret")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("songs with query token = %d, want 401", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=secret", nil).WithContext(ctx)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("events with query token = %d, want 200", w.Code)
	}
}

func TestRequireToken_DisabledPassesThrough(t *testing.T) {
	router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/songs", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("disabled auth = %d, want 200", w.Code)
	}
}

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", blockingSSE)
	w := get(t, router, "/events")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
