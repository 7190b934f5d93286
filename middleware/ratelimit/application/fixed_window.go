package application

import (
	"context"
	"fmt"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

// FixedWindowService aplica a regra de janela fixa sobre um domain.WindowCounter.
//
// Com Shared=true todas as chaves contam no mesmo contador (cota do processo
// inteiro). Caso contrário cada chave tem sua própria cota.
//
// A janela é fixa, não deslizante: na virada da janela a cota volta inteira, e
// perto da fronteira um cliente pode passar até 2x Max.
type FixedWindowService struct {
	Counter domain.WindowCounter
	Max     int
	Window  time.Duration
	Shared  bool
	Now     func() time.Time
}

func (s FixedWindowService) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Counter == nil || s.Max <= 0 || s.Window <= 0 {
		return domain.Decision{Allowed: true}, nil
	}
	if s.Shared {
		key = domain.SharedKey
	}

	count, reset, err := s.Counter.Increment(ctx, key, s.Window)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("increment window counter: %w", err)
	}

	dec := domain.Decision{
		Allowed:   count <= int64(s.Max),
		Limit:     s.Max,
		Remaining: remaining(s.Max, count),
		Reset:     reset,
	}
	if !dec.Allowed {
		dec.RetryAfter = retryAfter(reset, s.now())
	}
	return dec, nil
}

func (s FixedWindowService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func remaining(limit int, count int64) int {
	left := int64(limit) - count
	if left < 0 {
		return 0
	}
	return int(left)
}

// retryAfter arredonda para cima em segundos; nunca menos de 1s.
func retryAfter(reset, now time.Time) time.Duration {
	d := reset.Sub(now)
	if d <= time.Second {
		return time.Second
	}
	if rem := d % time.Second; rem != 0 {
		d += time.Second - rem
	}
	return d
}
