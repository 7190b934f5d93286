package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DjSurgeon/mern-thinkboard/internal/notes"
	servermw "github.com/DjSurgeon/mern-thinkboard/internal/server/middleware"
)

// NoteService é o que os handlers precisam de notes.Service.
type NoteService interface {
	List(ctx context.Context) ([]notes.Note, error)
	Get(ctx context.Context, id string) (notes.Note, error)
	Create(ctx context.Context, in notes.Input) (notes.Note, error)
	Update(ctx context.Context, id string, in notes.Input) (notes.Note, error)
	Delete(ctx context.Context, id string) error
}

type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

type NotesHandler struct {
	svc     NoteService
	onError ErrorResponder
}

func NewNotesHandler(svc NoteService, onError ErrorResponder) *NotesHandler {
	return &NotesHandler{svc: svc, onError: onError}
}

// Routes monta o CRUD em /api/notes.
func (h *NotesHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.List(r.Context())
	if err != nil {
		h.onError(w, r, fmt.Errorf("fetching notes: %w", err))
		return
	}
	servermw.WriteJSON(w, http.StatusOK, Envelope{Data: all, Message: "Notes fetched successfully. ✅"})
}

func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.onError(w, r, noteError(id, "fetching note", err))
		return
	}
	servermw.WriteJSON(w, http.StatusOK, Envelope{Data: note, Message: "Note fetched successfully. ✅"})
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		h.onError(w, r, err)
		return
	}
	note, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.onError(w, r, noteError("", "creating note", err))
		return
	}
	servermw.WriteJSON(w, http.StatusCreated, Envelope{Data: note, Message: "Note created successfully. ✅"})
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, err := decodeInput(r)
	if err != nil {
		h.onError(w, r, err)
		return
	}
	note, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.onError(w, r, noteError(id, "updating note", err))
		return
	}
	servermw.WriteJSON(w, http.StatusOK, Envelope{Data: note, Message: "Note updated successfully. ✅"})
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.onError(w, r, noteError(id, "deleting note", err))
		return
	}
	servermw.WriteJSON(w, http.StatusOK, Envelope{Message: "Note deleted successfully. ✅"})
}

// noteError converte erros do domínio em HTTPError; o resto sobe embrulhado.
func noteError(id, op string, err error) error {
	var ve *notes.ValidationError
	switch {
	case errors.As(err, &ve):
		return BadRequest(ve.Message, ve.Fields, err)
	case errors.Is(err, notes.ErrNotFound):
		return NotFound(fmt.Sprintf("Note with ID '%s' not found.", id), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func decodeInput(r *http.Request) (notes.Input, error) {
	var in notes.Input
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return notes.Input{}, &HTTPError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: "Request body is too large.",
				Err:     err,
			}
		case errors.Is(err, io.EOF):
			return notes.Input{}, BadRequest("Request body is required.", nil, err)
		}
		return notes.Input{}, BadRequest("Request body must be a valid JSON object.", nil, err)
	}
	return in, nil
}
