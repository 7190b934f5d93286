package infra

import (
	"context"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStats expõe as decisões como contador Prometheus.
//
// Só usa os rótulos limiter e outcome: Key/Path ficam de fora por cardinalidade.
type PrometheusStats struct {
	decisions *prometheus.CounterVec
}

func NewPrometheusStats(reg prometheus.Registerer, namespace string) (*PrometheusStats, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Admission decisions taken by each rate limiter.",
	}, []string{"limiter", "outcome"})

	if err := reg.Register(decisions); err != nil {
		return nil, err
	}
	return &PrometheusStats{decisions: decisions}, nil
}

func (p *PrometheusStats) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := "denied"
	if ev.Allowed {
		outcome = "allowed"
	}
	p.decisions.WithLabelValues(ev.Limiter, outcome).Inc()
	return nil
}

// MultiStats repassa cada evento a todos os stores e devolve o primeiro erro.
type MultiStats []domain.StatsStore

func (m MultiStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
