package application

import (
	"context"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

// ConcurrencyService limita quantas requisições ficam em voo ao mesmo tempo.
//
// Com AcquireTimeout <= 0 espera até o ctx da requisição encerrar.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire devolve a função de release ou domain.ErrNoSlot.
// Sem Pool, sempre libera.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(ctx)
	if !ok {
		return nil, domain.ErrNoSlot
	}
	return release, nil
}
