package handlers

import "net/http"

// HTTPError é um erro já mapeado para status e mensagem de resposta.
type HTTPError struct {
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

func BadRequest(message string, fields map[string]string, err error) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Fields: fields, Err: err}
}

func NotFound(message string, err error) *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, Message: message, Err: err}
}

// ErrorResponder escreve a resposta de erro; o servidor injeta o seu.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)
