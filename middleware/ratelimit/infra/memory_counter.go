package infra

import (
	"context"
	"sync"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

// MemoryCounter é um contador de janela fixa em memória do processo.
//
// Só serve para uma instância: cada processo tem seus próprios contadores.
type MemoryCounter struct {
	mu           sync.Mutex
	entries      map[string]*windowEntry
	now          func() time.Time
	cleanupEvery time.Duration
}

type windowEntry struct {
	index  int64
	window time.Duration
	count  int64
}

type MemoryCounterOption func(*MemoryCounter)

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) MemoryCounterOption {
	return func(c *MemoryCounter) { c.now = now }
}

func WithCounterCleanupEvery(d time.Duration) MemoryCounterOption {
	return func(c *MemoryCounter) { c.cleanupEvery = d }
}

func NewMemoryCounter(opts ...MemoryCounterOption) *MemoryCounter {
	c := &MemoryCounter{
		entries:      make(map[string]*windowEntry),
		now:          time.Now,
		cleanupEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Increment implementa domain.WindowCounter.
func (c *MemoryCounter) Increment(_ context.Context, key domain.Key, window time.Duration) (int64, time.Time, error) {
	idx := windowIndex(c.now(), window)

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[string(key)]
	if !ok || ent.index != idx || ent.window != window {
		ent = &windowEntry{index: idx, window: window}
		c.entries[string(key)] = ent
	}
	ent.count++
	return ent.count, windowEnd(idx, window), nil
}

// Len devolve quantas chaves estão em memória.
func (c *MemoryCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cleanup remove entradas de janelas que já terminaram e devolve quantas.
func (c *MemoryCounter) Cleanup() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	return sweepStale(c.entries, func(ent *windowEntry) bool {
		return ent.index < windowIndex(now, ent.window)
	})
}

// StartJanitor inicia uma goroutine que limpa janelas vencidas periodicamente.
// Pare cancelando o contexto.
func (c *MemoryCounter) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, c.cleanupEvery, func() { c.Cleanup() })
}

func windowIndex(now time.Time, window time.Duration) int64 {
	return now.UnixNano() / int64(window)
}

func windowEnd(idx int64, window time.Duration) time.Time {
	return time.Unix(0, (idx+1)*int64(window))
}
