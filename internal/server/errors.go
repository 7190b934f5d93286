package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/DjSurgeon/mern-thinkboard/internal/notes"
	"github.com/DjSurgeon/mern-thinkboard/internal/server/handlers"
	servermw "github.com/DjSurgeon/mern-thinkboard/internal/server/middleware"
	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

// HandleError é o pipeline de erro: handlers de notas e os limiters (via
// OnError) passam por aqui. Erros não mapeados viram 500 e são logados.
func HandleError(log *zap.Logger) handlers.ErrorResponder {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		var he *handlers.HTTPError
		if errors.As(err, &he) {
			servermw.WriteJSON(w, he.Status, servermw.ErrorBody{
				Error:   http.StatusText(he.Status),
				Message: he.Message,
				Fields:  he.Fields,
			})
			return
		}

		switch {
		case errors.Is(err, notes.ErrNotFound):
			servermw.WriteJSON(w, http.StatusNotFound, servermw.ErrorBody{
				Error:   http.StatusText(http.StatusNotFound),
				Message: "The requested resource was not found.",
			})
			return
		case errors.Is(err, domain.ErrNoSlot):
			servermw.WriteJSON(w, http.StatusServiceUnavailable, servermw.ErrorBody{
				Error:   http.StatusText(http.StatusServiceUnavailable),
				Message: "Server is busy. Please try again later.",
			})
			return
		}

		log.Error("request failed",
			zap.String("request_id", servermw.GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		servermw.WriteJSON(w, http.StatusInternalServerError, servermw.ErrorBody{
			Error:   http.StatusText(http.StatusInternalServerError),
			Message: "An unexpected error occurred.",
		})
	}
}
