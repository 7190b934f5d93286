package application

import (
	"context"
	"math"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

// TokenBucketService decide com base em um limiter por chave (token bucket).
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type TokenBucketService struct {
	Store      domain.LimiterStore
	Burst      int
	Shared     bool
	RetryAfter time.Duration
}

func (s TokenBucketService) Decide(_ context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}
	if s.Shared {
		key = domain.SharedKey
	}

	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}, nil
	}

	dec := domain.Decision{Limit: s.Burst}
	dec.Allowed = lim.Allow()
	if left := int(math.Floor(lim.Tokens())); left > 0 {
		dec.Remaining = left
	}
	if !dec.Allowed {
		dec.RetryAfter = s.RetryAfter
	}
	return dec, nil
}
