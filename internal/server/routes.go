package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DjSurgeon/mern-thinkboard/internal/server/handlers"
	servermw "github.com/DjSurgeon/mern-thinkboard/internal/server/middleware"
)

func (s *Server) registerRoutes(r chi.Router, svc handlers.NoteService, onError handlers.ErrorResponder) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		servermw.WriteJSON(w, http.StatusOK, map[string]string{"message": "API is Running"})
	})

	if svc != nil {
		r.Route("/api/notes", handlers.NewNotesHandler(svc, onError).Routes)
	}
}
