package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/noteservice"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pathParam returns a decoded URL parameter. chi matches on the raw path when
// the request carries escaped separators, in which case the value still needs
// unescaping.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func noteID(r *http.Request) models.ID {
	return models.ID(pathParam(r, "id"))
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List all notes in id order
//	@Tags			notes
//	@Produce		json
//	@Success		200		{array}		Note
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to create"
//	@Success		201		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.svc.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	Note
//	@Failure		404	{object}	errResponse
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err, slog.String("id", id.String()))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles GET /api/notes/delete/{id} and responds with the
// remaining notes.
//
//	@Summary		Delete a note and return the remaining collection
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{array}		Note
//	@Router			/notes/delete/{id} [get]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	rest, err := h.svc.DeleteOne(r.Context(), id)
	if err != nil {
		writeError(w, "delete note", err, slog.String("id", id.String()))
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

// DeleteAll handles DELETE /api/notes/deleteAll.
//
//	@Summary		Delete every note
//	@Tags			notes
//	@Success		204	"All notes deleted"
//	@Router			/notes/deleteAll [delete]
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAll(r.Context()); err != nil {
		writeError(w, "delete all notes", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Replace title and content of a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Note id"
//	@Param			body	body		NoteRequest	true	"New title and content"
//	@Success		200		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := noteID(r)
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.svc.Update(r.Context(), id, req.Title, req.Content)
	if err != nil {
		writeError(w, "update note", err, slog.String("id", id.String()))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateTitle handles PATCH /api/notes/updateTitle/{id}.
//
//	@Summary		Replace the title of a note
//	@Tags			notes
//	@Accept			json,plain
//	@Produce		json
//	@Param			id		path		string	true	"Note id"
//	@Param			body	body		string	true	"New title"
//	@Success		200		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/notes/updateTitle/{id} [patch]
func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	title, ok := readStringBody(w, r)
	if !ok {
		return
	}
	note, err := h.svc.UpdateTitle(r.Context(), id, title)
	if err != nil {
		writeError(w, "update title", err, slog.String("id", id.String()))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateContent handles PATCH /api/notes/updateContent/{id}.
//
//	@Summary		Replace the content of a note
//	@Tags			notes
//	@Accept			json,plain
//	@Produce		json
//	@Param			id		path		string	true	"Note id"
//	@Param			body	body		string	true	"New content"
//	@Success		200		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/notes/updateContent/{id} [patch]
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	content, ok := readStringBody(w, r)
	if !ok {
		return
	}
	note, err := h.svc.UpdateContent(r.Context(), id, content)
	if err != nil {
		writeError(w, "update content", err, slog.String("id", id.String()))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// SearchTitle handles GET /api/notes/title/{query}.
//
//	@Summary		Notes whose title contains the query
//	@Tags			search
//	@Produce		json
//	@Param			query	path	string	true	"Substring"
//	@Success		200		{array}	Note
//	@Router			/notes/title/{query} [get]
func (h *Handler) SearchTitle(w http.ResponseWriter, r *http.Request) {
	q := pathParam(r, "query")
	notes, err := h.svc.SearchTitle(r.Context(), q)
	if err != nil {
		writeError(w, "search title", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// SearchContent handles GET /api/notes/content/{query}.
//
//	@Summary		Notes whose content contains the query
//	@Tags			search
//	@Produce		json
//	@Param			query	path	string	true	"Substring"
//	@Success		200		{array}	Note
//	@Router			/notes/content/{query} [get]
func (h *Handler) SearchContent(w http.ResponseWriter, r *http.Request) {
	q := pathParam(r, "query")
	notes, err := h.svc.SearchContent(r.Context(), q)
	if err != nil {
		writeError(w, "search content", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// readStringBody decodes the single-field PATCH body: a JSON string literal,
// or the raw text when the request is not JSON.
func readStringBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return "", false
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		return string(data), true
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("body must be a JSON string"))
		return "", false
	}
	return s, true
}
