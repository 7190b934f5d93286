package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	servermw "github.com/DjSurgeon/mern-thinkboard/internal/server/middleware"
)

// HealthChecker é um componente que sabe dizer se está de pé (Redis, banco...).
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// CheckFunc adapta uma função (ex: rdb.Ping) a HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) CheckHealth(ctx context.Context) error { return f(ctx) }

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Readiness responde 200 quando todos os checks passam e 503 caso contrário.
// Cada check roda com o prazo `timeout`.
func Readiness(checkers map[string]HealthChecker, timeout time.Duration) http.HandlerFunc {
	names := make([]string, 0, len(checkers))
	for name := range checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(names))}
		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			err := checkers[name].CheckHealth(ctx)
			cancel()
			if err != nil {
				resp.Status = "unavailable"
				resp.Checks[name] = "unhealthy"
				continue
			}
			resp.Checks[name] = "healthy"
		}

		status := http.StatusOK
		if resp.Status != "ready" {
			status = http.StatusServiceUnavailable
		}
		servermw.WriteJSON(w, status, resp)
	}
}
