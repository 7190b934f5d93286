package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão tomada por um dos limiters da cadeia.
//
// Limiter é o nome do estágio ("redis", "local"...). Method/Path são strings
// genéricas, sem amarrar a net/http.
//
// Cuidado com cardinalidade: Key e Path sem controle podem explodir o número
// de séries/chaves no Redis ou no Prometheus.
type StatsEvent struct {
	Limiter string
	Key     Key
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// StatsStore persiste estatísticas de decisão.
//
// O middleware trata erro como best-effort (não derruba a request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
