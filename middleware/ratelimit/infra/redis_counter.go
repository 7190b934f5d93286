package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// incrWindow incrementa o contador e, no primeiro hit da janela, define a
// expiração. As duas operações rodam atômicas dentro do script.
//
// KEYS[1]: chave da janela
// ARGV[1]: TTL em milissegundos
var incrWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisCounter é o contador de janela fixa compartilhado entre instâncias.
//
// Chave: <prefix>:<key>:<janela>. Erros do Redis (dial, timeout, script) são
// devolvidos sem tratamento; quem decide fail-open/fail-closed é o middleware.
type RedisCounter struct {
	rdb    redis.Scripter
	prefix string
	now    func() time.Time
}

type RedisCounterOption func(*RedisCounter)

func WithCounterPrefix(prefix string) RedisCounterOption {
	return func(c *RedisCounter) { c.prefix = strings.Trim(prefix, ":") }
}

// WithCounterClock troca o relógio usado para calcular a janela (testes).
func WithCounterClock(now func() time.Time) RedisCounterOption {
	return func(c *RedisCounter) { c.now = now }
}

func NewRedisCounter(rdb redis.Scripter, opts ...RedisCounterOption) *RedisCounter {
	c := &RedisCounter{
		rdb:    rdb,
		prefix: "ratelimit:window",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Increment implementa domain.WindowCounter.
func (c *RedisCounter) Increment(ctx context.Context, key domain.Key, window time.Duration) (int64, time.Time, error) {
	now := c.now()
	idx := windowIndex(now, window)
	reset := windowEnd(idx, window)

	// folga de 1s para a chave não sumir antes do último incremento da janela
	ttl := reset.Sub(now) + time.Second

	count, err := incrWindow.Run(ctx, c.rdb, []string{c.windowKey(key, idx)}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis window increment: %w", err)
	}
	return count, reset, nil
}

func (c *RedisCounter) windowKey(key domain.Key, idx int64) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, key, idx)
}
