package handlers

import (
	"net/http"

	servermw "github.com/DjSurgeon/mern-thinkboard/internal/server/middleware"
	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/infra"
)

// StatsSource é o que o endpoint de estatísticas lê (infra.MemoryStatsStore).
type StatsSource interface {
	Snapshot() infra.StatsSnapshot
}

// Stats serve as contagens de decisões dos limiters em JSON.
func Stats(src StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		servermw.WriteJSON(w, http.StatusOK, src.Snapshot())
	}
}
