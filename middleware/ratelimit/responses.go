package ratelimit

import (
	"encoding/json"
	"net/http"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

// RejectFunc escreve a resposta de uma requisição barrada.
type RejectFunc func(w http.ResponseWriter, r *http.Request, dec domain.Decision)

// ErrorFunc recebe erros de decisão (store fora, timeout...).
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

type QuotaDetails struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

type DistributedRejectionBody struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Details QuotaDetails `json:"details"`
}

type LocalRejectionBody struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// DistributedRejection responde 429 com a cota do cliente; reset é epoch em ms.
func DistributedRejection(w http.ResponseWriter, _ *http.Request, dec domain.Decision) {
	var reset int64
	if !dec.Reset.IsZero() {
		reset = dec.Reset.UnixMilli()
	}
	writeJSON(w, http.StatusTooManyRequests, DistributedRejectionBody{
		Error:   http.StatusText(http.StatusTooManyRequests),
		Message: "Too Many Requests.",
		Details: QuotaDetails{Limit: dec.Limit, Remaining: dec.Remaining, Reset: reset},
	})
}

// LocalRejection responde 429 no formato {status, statusCode, error, message}.
func LocalRejection(w http.ResponseWriter, _ *http.Request, _ domain.Decision) {
	writeJSON(w, http.StatusTooManyRequests, LocalRejectionBody{
		Status:     "fail",
		StatusCode: http.StatusTooManyRequests,
		Error:      http.StatusText(http.StatusTooManyRequests),
		Message:    "Rate limit exceeded. Please try again later.",
	})
}

func plainRejection(w http.ResponseWriter, _ *http.Request, _ domain.Decision) {
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

func plainError(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
