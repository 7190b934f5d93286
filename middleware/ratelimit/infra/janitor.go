package infra

import "time"

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}

// startJanitor roda `sweep` a cada `every` até o ctx encerrar.
func startJanitor(ctx DoneContext, every time.Duration, sweep func()) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sweep()
			}
		}
	}()
}

// sweepStale apaga de m as entradas para as quais stale devolve true e
// retorna quantas saíram. Quem chama segura o lock do mapa.
func sweepStale[V any](m map[string]V, stale func(V) bool) int {
	n := 0
	for k, v := range m {
		if stale(v) {
			delete(m, k)
			n++
		}
	}
	return n
}
