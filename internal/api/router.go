package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/pontos/internal/songservice"
)

// NewRouter builds the preview API. With authEnabled every route needs the
// token; the event stream also accepts it as ?access_token= so a browser
// EventSource can connect. sseHandler is mounted at GET /events when set.
func NewRouter(svc *songservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		if authEnabled {
			r.Use(RequireToken(token, false))
		}
		r.Get("/songs", h.ListSongs)
		r.Get("/songs/*", h.GetSong)
		r.Get("/search", h.Search)
		r.Get("/tags", h.Tags)
	})

	if sseHandler != nil {
		r.Group(func(r chi.Router) {
			if authEnabled {
				r.Use(RequireToken(token, true))
			}
			r.Get("/events", sseHandler.ServeHTTP)
		})
	}

	return r
}
