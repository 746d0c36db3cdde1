package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/pontos/internal/songservice"
)

// Handler serves the catalog built from the docs tree.
type Handler struct {
	svc *songservice.Service
}

func NewHandler(svc *songservice.Service) *Handler {
	return &Handler{svc: svc}
}

// songPath returns the docs-relative path after /songs/, e.g.
// "ogum/ogum-mege.mdx". The preview page may send the folder separator
// escaped as %2F.
func songPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListSongs handles GET /api/songs: catalog rows ordered by path, optionally
// restricted to one orixá tag. Page size defaults to 50.
//
//	@Summary		List catalogued songs
//	@Tags			songs
//	@Produce		json
//	@Param			limit	query		int		false	"Page size (default 50)"
//	@Param			offset	query		int		false	"Rows to skip"
//	@Param			tag		query		string	false	"Frontmatter tag, e.g. Ogum"
//	@Success		200		{object}	SongListResponse
//	@Failure		401		{object}	apiError
//	@Security		BearerAuth
//	@Router			/songs [get]
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	tag := q.Get("tag")

	items, total, err := h.svc.ListSongs(r.Context(), limit, offset, tag)
	if err != nil {
		writeCatalogError(w, "list songs", err, slog.String("tag", tag))
		return
	}
	writeJSON(w, http.StatusOK, SongListResponse{Songs: items, Total: total})
}

// GetSong handles GET /api/songs/{path}: one document read from the docs
// tree with its frontmatter and the lyrics rendered to HTML.
//
//	@Summary		Read one song document
//	@Tags			songs
//	@Produce		json
//	@Param			path	path		string	true	"Docs-relative path, e.g. ogum/ogum-mege.mdx"
//	@Success		200		{object}	SongDetail
//	@Failure		400		{object}	apiError
//	@Failure		404		{object}	apiError
//	@Security		BearerAuth
//	@Router			/songs/{path} [get]
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	path := songPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "song path is required")
		return
	}
	song, err := h.svc.GetSong(r.Context(), path)
	if err != nil {
		writeCatalogError(w, "get song", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// Search handles GET /api/search. Matches title, lyrics and tags; with the
// fts5 build tag results are ranked and carry a highlighted snippet.
//
//	@Summary		Search song titles, lyrics and tags
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search terms"
//	@Param			limit	query		int		false	"Max results (default 20)"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	apiError
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeCatalogError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Tags handles GET /api/tags: every orixá tag with its song count.
//
//	@Summary		List tags with song counts
//	@Tags			songs
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		writeCatalogError(w, "tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}
