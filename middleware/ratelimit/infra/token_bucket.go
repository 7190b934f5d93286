package infra

import (
	"sync"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// TokenBucketStore guarda um *rate.Limiter por chave. É o algoritmo alternativo
// do limiter local (RATE_LIMIT_ALGORITHM=token-bucket); como o limiter local usa
// domain.SharedKey, na prática existe um único bucket.
//
// Buckets sem uso há mais de idleTTL são descartados pelo janitor. Um bucket
// descartado volta cheio, o que equivale ao reset de uma janela.
type TokenBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	every   rate.Limit
	burst   int
	idleTTL time.Duration
	sweep   time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type TokenBucketOption func(*TokenBucketStore)

func WithIdleTTL(d time.Duration) TokenBucketOption {
	return func(s *TokenBucketStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) TokenBucketOption {
	return func(s *TokenBucketStore) { s.sweep = d }
}

// WithBucketClock troca o relógio usado para medir ociosidade (testes).
func WithBucketClock(now func() time.Time) TokenBucketOption {
	return func(s *TokenBucketStore) { s.now = now }
}

// NewTokenBucketStore cria buckets de `burst` fichas recarregando `rps` por segundo.
func NewTokenBucketStore(rps float64, burst int, opts ...TokenBucketOption) *TokenBucketStore {
	s := &TokenBucketStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		every:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		sweep:   2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTokenBucketStoreForWindow traduz "limit por window" para a taxa de
// recarga, com burst = limit. A ociosidade mínima passa a ser a janela, para
// um bucket não voltar cheio antes do que a janela fixa permitiria.
func NewTokenBucketStoreForWindow(limit int, window time.Duration, opts ...TokenBucketOption) *TokenBucketStore {
	s := NewTokenBucketStore(float64(limit)/window.Seconds(), limit, opts...)
	if s.idleTTL < window {
		s.idleTTL = window
	}
	return s
}

func (s *TokenBucketStore) RPS() float64 { return float64(s.every) }
func (s *TokenBucketStore) Burst() int   { return s.burst }

// Get implementa domain.LimiterStore.
func (s *TokenBucketStore) Get(key domain.Key) domain.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[string(key)]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(s.every, s.burst)}
		s.buckets[string(key)] = b
	}
	b.lastSeen = now
	return b.lim
}

func (s *TokenBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Cleanup descarta os buckets ociosos e devolve quantos saíram.
func (s *TokenBucketStore) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	return sweepStale(s.buckets, func(b *bucket) bool { return b.lastSeen.Before(cutoff) })
}

// StartJanitor limpa buckets ociosos periodicamente até o ctx encerrar.
func (s *TokenBucketStore) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, s.sweep, func() { s.Cleanup() })
}
