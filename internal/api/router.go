package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notes/internal/noteservice"
)

// NewRouter creates a chi router with all notes API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *noteservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Delete("/deleteAll", h.DeleteAll)
		r.Get("/delete/{id}", h.DeleteNote)
		r.Patch("/updateTitle/{id}", h.UpdateTitle)
		r.Patch("/updateContent/{id}", h.UpdateContent)
		r.Get("/title/{query}", h.SearchTitle)
		r.Get("/content/{query}", h.SearchContent)
		r.Get("/{id}", h.GetNote)
		r.Put("/{id}", h.UpdateNote)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
